// Package rank orders continent tables by a numeric column.
package rank

import (
	"math"
	"slices"

	"energyeda/internal/transformer/builtin"
	"energyeda/pkg/records"
)

// DefaultColumn is the column ranked on when none is configured.
const DefaultColumn = builtin.ColConsumption

// ByDesc returns the rows of t sorted by column, largest first. The sort is
// stable, so equal values keep their input order. Null, NaN or non-numeric
// values sort after every numeric value. A column outside t.Columns fails
// with a *records.KeyError.
func ByDesc(t records.Table, column string) (records.Table, error) {
	if column == "" {
		column = DefaultColumn
	}
	if !t.HasColumn(column) {
		return records.Table{}, &records.KeyError{Column: column}
	}

	type keyed struct {
		rec records.Record
		v   float64
		ok  bool
	}
	ks := make([]keyed, len(t.Rows))
	for i, r := range t.Rows {
		v, ok := builtin.ToFloat64(r[column])
		ks[i] = keyed{rec: r, v: v, ok: ok && !math.IsNaN(v)}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		case a.v > b.v:
			return -1
		case a.v < b.v:
			return 1
		}
		return 0
	})

	rows := make([]records.Record, len(ks))
	for i, k := range ks {
		rows[i] = k.rec
	}
	return t.WithRows(rows), nil
}

// Top returns the first n rows of t. n <= 0 returns every row.
func Top(t records.Table, n int) records.Table {
	if n <= 0 || n >= len(t.Rows) {
		return t.WithRows(slices.Clone(t.Rows))
	}
	return t.WithRows(slices.Clone(t.Rows[:n]))
}
