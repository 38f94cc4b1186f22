package builtin

import (
	"math"
	"strconv"
	"strings"
	"time"

	"energyeda/pkg/records"
)

// Coerce converts column values to the kinds named in Types ("int", "float",
// "bool", "date", "string"). Columns the table does not have are ignored and
// nil stays nil.
//
// In lenient mode values that do not parse are left untouched. In Strict
// mode such a value fails the whole table with a *records.TypeError. Ints
// are always produced as int64.
type Coerce struct {
	Types  map[string]string // field -> one of: int, float, bool, date, string
	Layout string            // date layout; defaults to 2006-01-02
	Strict bool
}

func (c Coerce) Apply(in records.Table) (records.Table, error) {
	if len(c.Types) == 0 {
		return in, nil
	}
	layout := c.Layout
	if layout == "" {
		layout = time.DateOnly
	}

	rows := make([]records.Record, len(in.Rows))
	for i, rec := range in.Rows {
		out := rec.Clone()
		for field, typ := range c.Types {
			v, ok := rec[field]
			if !ok || v == nil {
				continue
			}
			cv, ok := convert(v, typ, layout)
			if !ok {
				if c.Strict {
					return records.Table{}, &records.TypeError{Column: field, Row: i, Value: v, Want: typ}
				}
				continue
			}
			out[field] = cv
		}
		rows[i] = out
	}
	return in.WithRows(rows), nil
}

func convert(v any, typ, layout string) (any, bool) {
	switch typ {
	case "int":
		n, ok := ToInt64(v)
		return n, ok
	case "float":
		f, ok := ToFloat64(v)
		return f, ok
	case "bool":
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			p, err := strconv.ParseBool(strings.TrimSpace(b))
			return p, err == nil
		}
		return nil, false
	case "date":
		switch d := v.(type) {
		case time.Time:
			return d, true
		case string:
			t, err := time.Parse(layout, strings.TrimSpace(d))
			return t, err == nil
		}
		return nil, false
	case "string":
		switch s := v.(type) {
		case string:
			return s, true
		case int64:
			return strconv.FormatInt(s, 10), true
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		}
		return nil, false
	}
	return nil, false
}

// ToInt64 converts integer kinds, whole floats and strings holding an
// integer or a whole float ("2015", "2015.0") to int64.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float64:
		return wholeFloat(n)
	case float32:
		return wholeFloat(float64(n))
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return wholeFloat(f)
		}
	}
	return 0, false
}

func wholeFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ToFloat64 converts numeric kinds and numeric strings to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
