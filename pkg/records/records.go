// Package records holds the in-memory row model shared by every pipeline
// stage: a Record is one row keyed by column name, a Table is an ordered
// sequence of Records sharing one column set.
package records

import (
	"math"
	"slices"
)

// Record is one row. A missing key or a nil value is a null field.
type Record map[string]any

// Table is an ordered set of rows with a declared column set. Columns keeps
// the header order of the source so printouts and exports stay stable.
type Table struct {
	Columns []string
	Rows    []Record
}

// New returns an empty table with the given columns.
func New(columns ...string) Table {
	return Table{Columns: slices.Clone(columns)}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is part of the column set.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Values returns the values of one column in row order. Missing fields are nil.
func (t Table) Values(column string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[column]
	}
	return out
}

// WithRows returns a table sharing t's column set with the given rows.
func (t Table) WithRows(rows []Record) Table {
	return Table{Columns: slices.Clone(t.Columns), Rows: rows}
}

// Clone copies the column set, the row slice and every row map. Values
// themselves are shared; they are immutable scalars in practice.
func (t Table) Clone() Table {
	rows := make([]Record, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return Table{Columns: slices.Clone(t.Columns), Rows: rows}
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	m := make(Record, len(r))
	for k, v := range r {
		m[k] = v
	}
	return m
}

// IsNull reports whether v counts as a missing value. Empty strings are null,
// matching how the CSV parser maps empty cells, and so is a NaN float.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Concat appends the rows of every table in order. The column set of the
// result is the ordered union of the inputs; rows lacking a column are left
// without it, which downstream stages treat as null. Rows are not copied.
func Concat(tables ...Table) Table {
	var out Table
	seen := map[string]struct{}{}
	n := 0
	for _, t := range tables {
		n += len(t.Rows)
		for _, c := range t.Columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([]Record, 0, n)
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}
