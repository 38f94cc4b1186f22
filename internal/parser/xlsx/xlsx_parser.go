// Package xlsx reads the first (or a named) worksheet of an Excel workbook
// into a records.Table, treating the first row as the header. It exists so the
// same exports can be fed to the pipeline whether they were saved as CSV or
// re-saved from a spreadsheet.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"energyeda/pkg/records"
)

// Options configures sheet selection.
type Options struct {
	// Sheet names the worksheet to read. Empty selects the first sheet.
	Sheet string

	// TrimSpace trims leading/trailing spaces from each cell.
	TrimSpace bool
}

// Parser parses XLSX workbooks.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the workbook from r. Rows shorter than the header are padded
// with nulls (spreadsheets drop trailing empty cells); rows longer than the
// header are a parse error.
func (p *Parser) Parse(name string, r io.Reader) (records.Table, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return records.Table{}, 0, &records.ParseError{File: name, Err: err}
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return records.Table{}, 0, &records.ParseError{File: name, Err: errors.New("workbook has no sheets")}
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return records.Table{}, 0, &records.ParseError{File: name, Err: fmt.Errorf("sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return records.Table{}, 0, &records.ParseError{File: name, Line: 1, Err: errors.New("no header row")}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	out := records.New(headers...)

	for i, row := range rows[1:] {
		if len(row) > len(headers) {
			return records.Table{}, 0, &records.ParseError{
				File: name,
				Line: i + 2,
				Err:  fmt.Errorf("wrong number of fields (expected %d, got %d)", len(headers), len(row)),
			}
		}
		rec := make(records.Record, len(headers))
		for j, h := range headers {
			var v any
			if j < len(row) {
				s := row[j]
				if p.opt.TrimSpace {
					s = strings.TrimSpace(s)
				}
				if s != "" {
					v = s
				}
			}
			rec[h] = v
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, 0, nil
}
