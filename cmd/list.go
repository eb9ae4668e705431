// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/go-core-stack/estimate-gateway/pkg/estimate"
	"github.com/go-core-stack/estimate-gateway/pkg/normalize"
	"github.com/go-core-stack/estimate-gateway/pkg/render"
)

var (
	listFilter string
	listLimit  string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch estimates from the list flow and print them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runList(ctx, newService(), cmd.OutOrStdout())
	},
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Filter passed to the list flow")
	listCmd.Flags().StringVar(&listLimit, "limit", "", "Maximum number of records requested")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the normalized data as JSON")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func runList(ctx context.Context, lister *estimate.Service, out io.Writer) error {
	result, err := lister.List(ctx, estimate.FilterQuery(listFilter, listLimit), nil)
	if err != nil {
		return err
	}

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Data)
	}

	view, err := render.Render(normalize.Classify(result.Data), render.EstimateColumns)
	if err != nil {
		return err
	}
	return printView(out, view)
}

func printView(out io.Writer, view render.View) error {
	if !view.Tabular() {
		_, err := fmt.Fprintln(out, view.JSON)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(view.Table.Headers...).
		Rows(view.Table.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d items\n", len(view.Table.Rows))
	return err
}
