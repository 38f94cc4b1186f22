// Package schema infers column kinds for freshly loaded tables and describes
// tables for the SQL explorer.
package schema

import (
	"strconv"
	"strings"

	"energyeda/pkg/records"
)

// Kind is the inferred value kind of a column.
type Kind int

const (
	// Empty marks a column with no non-null values.
	Empty Kind = iota
	Int
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return "empty"
}

// Infer returns the narrowest kind that fits every non-null value of each
// column: Int when all parse as integers, Float when all parse as numbers,
// String otherwise.
func Infer(t records.Table) map[string]Kind {
	kinds := make(map[string]Kind, len(t.Columns))
	for _, c := range t.Columns {
		k := Empty
		for _, r := range t.Rows {
			v := r[c]
			if IsNA(v) {
				continue
			}
			k = widen(k, kindOf(v))
			if k == String {
				break
			}
		}
		kinds[c] = k
	}
	return kinds
}

// naTokens are the cell spellings read as missing values, the same set
// pandas treats as NA by default.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

// IsNA reports whether v is null or a string spelling of a missing value.
func IsNA(v any) bool {
	if records.IsNull(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, na := naTokens[strings.TrimSpace(s)]
	return na
}

func kindOf(v any) Kind {
	switch x := v.(type) {
	case int64, int, int32:
		return Int
	case float64, float32:
		return Float
	case string:
		s := strings.TrimSpace(x)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return Float
		}
	}
	return String
}

func widen(a, b Kind) Kind {
	if a > b {
		return a
	}
	return b
}

// Apply converts string cells to int64 or float64 according to Infer. Empty
// strings, NA spellings such as "NaN" or "N/A" and NaN floats become nil. The input table is left untouched.
func Apply(t records.Table) (records.Table, map[string]Kind) {
	kinds := Infer(t)
	rows := make([]records.Record, len(t.Rows))
	for i, r := range t.Rows {
		out := r.Clone()
		for _, c := range t.Columns {
			v, ok := r[c]
			if !ok {
				continue
			}
			if IsNA(v) {
				out[c] = nil
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch kinds[c] {
			case Int:
				n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				out[c] = n
			case Float:
				f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
				out[c] = f
			}
		}
		rows[i] = out
	}
	return t.WithRows(rows), kinds
}
