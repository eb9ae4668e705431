// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package normalize turns flow payloads of unknown shape into something the
// gateway can present: the conventional list wrapper is unwrapped, and any
// value is classified as either tabular records or opaque JSON.
package normalize

// List wrapper fields, in lookup order.
const (
	FieldValue = "value"
	FieldItems = "items"
)

// Items extracts the record list from v. Objects carrying a "value" or
// "items" array yield that array; a bare array is returned as is. ok is false
// for any other shape.
func Items(v any) (items []any, ok bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		for _, field := range []string{FieldValue, FieldItems} {
			if list, isList := t[field].([]any); isList {
				return list, true
			}
		}
	}
	return nil, false
}

// Payload is either Tabular or Opaque.
type Payload interface {
	isPayload()
}

// Tabular is an array whose every element is a JSON object.
type Tabular struct {
	Rows []map[string]any
}

// Opaque is any value that is not tabular.
type Opaque struct {
	Value any
}

func (Tabular) isPayload() {}
func (Opaque) isPayload()  {}

// Classify decides how v is presented. The returned rows share their maps
// with v; callers must treat them as read-only.
func Classify(v any) Payload {
	list, ok := v.([]any)
	if !ok {
		return Opaque{Value: v}
	}
	rows := make([]map[string]any, 0, len(list))
	for _, el := range list {
		row, isObject := el.(map[string]any)
		if !isObject {
			return Opaque{Value: v}
		}
		rows = append(rows, row)
	}
	return Tabular{Rows: rows}
}
