package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"energyeda/pkg/records"
)

// Sheet is one named table in a workbook.
type Sheet struct {
	Name  string
	Table records.Table
}

// XLSX writes sheets into a new workbook. The first sheet replaces the
// default "Sheet1". Headers are bold on Theme.HeaderFill; float cells use
// Theme.NumberFormat.
func XLSX(w io.Writer, theme Theme, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("xlsx: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, number, err := styles(f, theme)
	if err != nil {
		return err
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("xlsx: new sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s, header, number); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func styles(f *excelize.File, theme Theme) (header, number int, err error) {
	hs := &excelize.Style{Font: &excelize.Font{Bold: true}}
	if theme.HeaderFill != "" {
		hs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{theme.HeaderFill}}
	}
	if header, err = f.NewStyle(hs); err != nil {
		return 0, 0, fmt.Errorf("xlsx: header style: %w", err)
	}

	format := theme.NumberFormat
	if format == "" {
		format = "General"
	}
	if number, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return 0, 0, fmt.Errorf("xlsx: number style: %w", err)
	}
	return header, number, nil
}

func writeSheet(f *excelize.File, s Sheet, header, number int) error {
	t := s.Table
	if len(t.Columns) == 0 {
		return nil
	}

	cols := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c
	}
	if err := f.SetSheetRow(s.Name, "A1", &cols); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", s.Name, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err := f.SetCellStyle(s.Name, "A1", last, header); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", s.Name, err)
	}

	for ri, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for ci, c := range t.Columns {
			row[ci] = r[c]
		}
		cell, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", s.Name, ri+1, err)
		}
		for ci, v := range row {
			if _, ok := v.(float64); !ok {
				continue
			}
			at, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err := f.SetCellStyle(s.Name, at, at, number); err != nil {
				return fmt.Errorf("xlsx: %s number style: %w", s.Name, err)
			}
		}
	}
	return f.SetPanes(s.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
