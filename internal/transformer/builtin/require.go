// Package builtin contains the reusable table transformers the pipeline is
// assembled from: Require (cleaner), Rename/Project/Replace (column mapper),
// Coerce (type normalizer) and Normalize (string cleanup).
package builtin

import "energyeda/pkg/records"

// Require removes any record with a null value in one of Fields. An empty
// Fields checks every column of the table. Missing keys, nil and "" count
// as null. The surviving rows keep their input order.
type Require struct {
	Fields []string
}

// Apply returns a new table holding only the complete rows. It never fails.
func (r Require) Apply(in records.Table) (records.Table, error) {
	fields := r.Fields
	if len(fields) == 0 {
		fields = in.Columns
	}
	out := make([]records.Record, 0, len(in.Rows))
	for _, rec := range in.Rows {
		ok := true
		for _, f := range fields {
			if records.IsNull(rec[f]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return in.WithRows(out), nil
}
