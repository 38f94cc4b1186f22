package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"energyeda/pkg/records"
)

// Normalize cleans string values: non-breaking spaces become plain spaces,
// surrounding space is trimmed and the text is put in Unicode NFC form.
// Fields limits the columns touched; empty means every column.
type Normalize struct {
	Fields []string
}

func (n Normalize) Apply(in records.Table) (records.Table, error) {
	fields := n.Fields
	if len(fields) == 0 {
		fields = in.Columns
	}
	rows := make([]records.Record, len(in.Rows))
	for i, rec := range in.Rows {
		out, cloned := rec, false
		for _, f := range fields {
			s, ok := rec[f].(string)
			if !ok {
				continue
			}
			if c := CleanString(s); c != s {
				if !cloned {
					out, cloned = rec.Clone(), true
				}
				out[f] = c
			}
		}
		rows[i] = out
	}
	return in.WithRows(rows), nil
}

// CleanString applies the Normalize rules to one value.
func CleanString(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return norm.NFC.String(strings.TrimSpace(s))
}
