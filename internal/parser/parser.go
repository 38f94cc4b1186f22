// Package parser defines the contract shared by the tabular parsers and picks
// one for a given source.
package parser

import (
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"energyeda/internal/config"
	pcsv "energyeda/internal/parser/csv"
	"energyeda/internal/parser/xlsx"
	"energyeda/pkg/records"
)

// Parser turns raw bytes into a table. name identifies the input in errors;
// the int result counts rows skipped in soft-fail mode.
type Parser interface {
	Parse(name string, r io.Reader) (records.Table, int, error)
}

// ForSource selects the parser for a source. Kind "xlsx" (or a location ending
// in .xlsx when Kind is empty) selects the workbook parser; everything else is
// delimited text. log receives soft-fail warnings.
func ForSource(src config.Source, p config.Parser, log zerolog.Logger) Parser {
	kind := strings.ToLower(p.Kind)
	if kind == "" && strings.EqualFold(path.Ext(src.Location()), ".xlsx") {
		kind = "xlsx"
	}
	switch kind {
	case "xlsx":
		return xlsx.NewParser(xlsx.Options{
			Sheet:     p.Options.String("sheet", ""),
			TrimSpace: p.Options.Bool("trim_space", true),
		})
	default:
		return pcsv.NewParser(pcsv.Options{
			HasHeader:      p.Options.Bool("has_header", true),
			Comma:          p.Options.Rune("comma", ','),
			TrimSpace:      p.Options.Bool("trim_space", true),
			ExpectedFields: p.Options.Int("expected_fields", 0),
			HeaderMap:      p.Options.StringMap("header_map"),
			SkipMalformed:  p.Options.Bool("skip_malformed", false),
		}).WithLogger(log)
	}
}
