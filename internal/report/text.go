// Package report presents pipeline results: an aligned text printout and an
// XLSX workbook. Visual settings arrive as an explicit Theme.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"energyeda/pkg/records"
)

// Theme carries the presenter's visual configuration.
type Theme struct {
	// TitlePrefix is prepended to every section title of the text printout.
	// XLSX sheet names are written without it.
	TitlePrefix string

	// NumberFormat is the Excel number format for float cells, e.g. "#,##0".
	NumberFormat string

	// HeaderFill is the header background color as #RRGGBB.
	HeaderFill string
}

// WriteText prints title followed by t as tab-aligned columns. limit caps
// the number of rows printed; 0 prints every row. A trailer notes how many
// rows were left out.
func WriteText(w io.Writer, title string, t records.Table, limit int, theme Theme) error {
	if _, err := fmt.Fprintf(w, "%s%s (%d rows)\n", theme.TitlePrefix, title, t.Len()); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		_, err := fmt.Fprintln(w, "(no columns)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))

	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	cells := make([]string, len(t.Columns))
	for _, r := range t.Rows[:n] {
		for i, c := range t.Columns {
			cells[i] = FormatValue(r[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if n < t.Len() {
		if _, err := fmt.Fprintf(w, "... %d more rows\n", t.Len()-n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// FormatValue renders one cell for the text printout. Null prints as "NA",
// whole floats print without a fraction.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NA"
	case string:
		if x == "" {
			return "NA"
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(time.DateOnly)
	}
	return fmt.Sprint(v)
}
