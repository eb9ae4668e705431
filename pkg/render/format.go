// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package render

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format selects how a cell value is printed.
type Format int

const (
	// Plain prints strings as-is and other values as JSON text.
	Plain Format = iota
	// Number prints with locale grouping and at most two fraction digits.
	Number
	// Currency prints with locale grouping and exactly two decimals.
	Currency
)

// displayLocale is the locale numbers are grouped for.
var displayLocale = language.English

// FormatValue renders a single non-nil value with f. Values that cannot be
// read as a finite number fall back to Plain.
func FormatValue(v any, f Format) string {
	switch f {
	case Number:
		if n, ok := toFloat(v); ok {
			return message.NewPrinter(displayLocale).Sprintf("%v",
				number.Decimal(roundHalfAway(n, 2), number.MaxFractionDigits(2)))
		}
	case Currency:
		if n, ok := toFloat(v); ok {
			return message.NewPrinter(displayLocale).Sprintf("%v",
				number.Decimal(roundHalfAway(n, 2), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
		}
	}
	return plain(v)
}

// roundHalfAway rounds f to digits fraction digits, resolving ties away from
// zero. The rounding works on the shortest decimal text of f, so a value
// such as 0.125 is a tie even though number.Decimal would round it to even.
func roundHalfAway(f float64, digits int) float64 {
	text := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	intPart, frac, _ := strings.Cut(text, ".")
	if len(frac) <= digits {
		return f
	}

	scaled, ok := new(big.Int).SetString(intPart+frac[:digits], 10)
	if !ok {
		return f
	}
	if frac[digits] >= '5' {
		scaled.Add(scaled, big.NewInt(1))
	}

	rounded := scaled.String()
	if len(rounded) <= digits {
		rounded = strings.Repeat("0", digits-len(rounded)+1) + rounded
	}
	rounded = rounded[:len(rounded)-digits] + "." + rounded[len(rounded)-digits:]

	out, err := strconv.ParseFloat(rounded, 64)
	if err != nil {
		return f
	}
	if f < 0 && out != 0 {
		return -out
	}
	return out
}

// toFloat reads numbers and numeric strings; grouping commas are ignored.
func toFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func plain(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := marshal(v, "")
	if err != nil {
		return ""
	}
	return b
}

// marshal encodes v without HTML escaping, indenting when indent is set.
func marshal(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
