// Package transformer assembles table transformers into the ordered chain the
// pipeline runs between merging and continent filtering.
package transformer

import (
	"fmt"

	"energyeda/internal/config"
	"energyeda/internal/transformer/builtin"
	"energyeda/pkg/records"
)

// Transformer turns one table into another. Implementations must not mutate
// the rows of their input.
type Transformer interface {
	Apply(records.Table) (records.Table, error)
}

// Step is a transformer labeled with the kind it was built from. The kind
// names the stage in logs and metrics.
type Step struct {
	Kind string
	Transformer
}

// Chain is an ordered list of steps.
type Chain []Step

// Apply runs every step in order and stops at the first error.
func (c Chain) Apply(in records.Table) (records.Table, error) {
	out := in
	for _, s := range c {
		var err error
		if out, err = s.Apply(out); err != nil {
			return records.Table{}, fmt.Errorf("%s: %w", s.Kind, err)
		}
	}
	return out, nil
}

// DefaultSpecs is the canonical chain: drop incomplete rows, map to the
// canonical schema, then make the two year columns nullable integers.
func DefaultSpecs() []config.Transform {
	types := map[string]any{}
	for _, c := range builtin.YearColumns {
		types[c] = "int"
	}
	return []config.Transform{
		{Kind: "require", Options: config.Options{}},
		{Kind: "map_columns", Options: config.Options{}},
		{Kind: "coerce", Options: config.Options{"strict": true, "types": types}},
	}
}

// Build constructs a chain from transform specs. An empty list yields the
// DefaultSpecs chain.
func Build(specs []config.Transform) (Chain, error) {
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}
	chain := make(Chain, 0, len(specs))
	for i, s := range specs {
		t, err := build(s)
		if err != nil {
			return nil, fmt.Errorf("transform[%d]: %w", i, err)
		}
		chain = append(chain, Step{Kind: s.Kind, Transformer: t})
	}
	return chain, nil
}

func build(s config.Transform) (Transformer, error) {
	o := s.Options
	switch s.Kind {
	case "require":
		return builtin.Require{Fields: o.StringSlice("fields")}, nil
	case "map_columns":
		return builtin.ColumnMapper{}, nil
	case "rename":
		return builtin.Rename{Mapping: o.StringMap("mapping")}, nil
	case "project":
		return builtin.Project{Columns: o.StringSlice("columns")}, nil
	case "replace":
		return builtin.Replace{
			Field: o.String("field", ""),
			From:  o.String("from", ""),
			To:    o.String("to", ""),
		}, nil
	case "coerce":
		return builtin.Coerce{
			Types:  o.StringMap("types"),
			Layout: o.String("layout", ""),
			Strict: o.Bool("strict", false),
		}, nil
	case "normalize":
		return builtin.Normalize{Fields: o.StringSlice("fields")}, nil
	default:
		return nil, fmt.Errorf("unknown transform kind %q", s.Kind)
	}
}
