// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package render projects normalized flow payloads into display structures:
// a table of formatted cells for tabular payloads, or indented JSON text for
// anything else. Rendering never modifies the payload.
package render

import (
	"fmt"

	"github.com/go-core-stack/estimate-gateway/pkg/normalize"
)

// Column is one displayed column. Sources lists candidate field names in
// priority order.
type Column struct {
	Header  string
	Sources []string
	Format  Format
}

// EstimateColumns is the column layout of the estimate list.
var EstimateColumns = []Column{
	{Header: "ID", Sources: []string{"ID", "Id", "id"}},
	{Header: "Customer Name", Sources: []string{"CustomerName", "Title"}},
	{Header: "Project Name", Sources: []string{"ProjectName"}},
	{Header: "Requester", Sources: []string{"Requester"}},
	{Header: "Customer Email", Sources: []string{"CustomerEmail"}},
	{Header: "Work Type", Sources: []string{"WorkType"}},
	{Header: "Quantity", Sources: []string{"Quantity"}, Format: Number},
	{Header: "Unit", Sources: []string{"Unit"}},
	{Header: "Unit Price", Sources: []string{"UnitPrice"}, Format: Currency},
	{Header: "Subtotal", Sources: []string{"Subtotal"}, Format: Currency},
	{Header: "Tax", Sources: []string{"Tax"}, Format: Currency},
	{Header: "Created", Sources: []string{"Created", "CreatedAt", "createdAt"}},
}

// Table holds formatted cells, one slice per row in column order.
type Table struct {
	Headers []string
	Rows    [][]string
}

// View is the display form of a payload. Exactly one of Table or JSON is set.
type View struct {
	Table *Table
	JSON  string
}

// Tabular reports whether the view is a table.
func (v View) Tabular() bool {
	return v.Table != nil
}

// Render builds the view of p using columns.
func Render(p normalize.Payload, columns []Column) (View, error) {
	switch t := p.(type) {
	case normalize.Tabular:
		return View{Table: buildTable(t.Rows, columns)}, nil
	case normalize.Opaque:
		text, err := marshal(t.Value, "  ")
		if err != nil {
			return View{}, fmt.Errorf("render opaque payload: %w", err)
		}
		return View{JSON: text}, nil
	default:
		return View{}, fmt.Errorf("render: unsupported payload %T", p)
	}
}

func buildTable(rows []map[string]any, columns []Column) *Table {
	table := &Table{
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for i, col := range columns {
		table.Headers[i] = col.Header
	}
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = Cell(row, col)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// Cell formats the value of col in row. The first candidate with a non-null
// value wins. A cell with no candidate field present is empty; one whose
// present candidates are all null reads "null".
func Cell(row map[string]any, col Column) string {
	present := false
	for _, source := range col.Sources {
		v, ok := row[source]
		if !ok {
			continue
		}
		present = true
		if v == nil {
			continue
		}
		return FormatValue(v, col.Format)
	}
	if present {
		return "null"
	}
	return ""
}
