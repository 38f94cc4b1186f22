// Package csv parses delimited text into a records.Table. Header names are
// kept verbatim so raw export names such as "Value:Annual_Consumption_Electricity"
// survive until the column mapper renames them.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"energyeda/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and HasHeader is false, names the columns
	// col_0..col_N-1.
	ExpectedFields int

	// HeaderMap renames source headers as they are read. Unmapped headers are
	// kept as-is.
	HeaderMap map[string]string

	// SkipMalformed switches from fail-fast to soft-fail: malformed rows are
	// logged, counted and skipped instead of aborting the parse.
	SkipMalformed bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt Options
	log zerolog.Logger
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt, log: zerolog.Nop()} }

// WithLogger sets the logger used for soft-fail row reports.
func (p *Parser) WithLogger(l zerolog.Logger) *Parser {
	p.log = l
	return p
}

// skipLogLimit caps how many skipped rows are logged individually.
const skipLogLimit = 400

// Parse consumes CSV from r and returns the parsed table along with the number
// of rows skipped in SkipMalformed mode. name identifies the input in errors.
//
// Without SkipMalformed any malformed row aborts with a *records.ParseError.
// Empty input with HasHeader set is also a parse error: there is no header to
// infer columns from.
func (p *Parser) Parse(name string, r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced below against the header so skipped rows can be counted.
	cr.FieldsPerRecord = -1

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("no header row")
			}
			return records.Table{}, 0, &records.ParseError{File: name, Line: 1, Err: err}
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	out := records.New(headers...)
	skipped := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		var line int
		if err == nil {
			line, _ = cr.FieldPos(0)
			if len(headers) > 0 && len(row) != len(headers) {
				err = fmt.Errorf("wrong number of fields (expected %d, got %d)", len(headers), len(row))
			}
		} else {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				// The reader itself failed, not the CSV syntax.
				return records.Table{}, skipped, &records.IOError{Path: name, Err: err}
			}
			line = pe.Line
		}
		if err != nil {
			if !p.opt.SkipMalformed {
				return records.Table{}, skipped, &records.ParseError{File: name, Line: line, Err: err}
			}
			if skipped < skipLogLimit {
				p.log.Warn().Str("file", name).Int("line", line).Err(err).Msg("skipping row")
			}
			skipped++
			continue
		}

		if len(headers) == 0 {
			// Headerless and no expected width: the first row fixes the columns.
			for i := range row {
				headers = append(headers, fmt.Sprintf("col_%d", i))
			}
			out.Columns = append(out.Columns, headers...)
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out.Rows = append(out.Rows, rec)
	}

	return out, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders applies HeaderMap, trims spaces and strips a UTF-8 BOM from
// the first cell. Unlike field names in the DB loaders, case is preserved.
func normalizeHeaders(h []string, opt Options) []string {
	res := StripHeaderBOM(h)
	for i, col := range res {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok && m != "" {
			c = m
		}
		res[i] = c
	}
	return res
}
