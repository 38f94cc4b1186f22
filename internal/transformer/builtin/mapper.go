package builtin

import (
	"slices"

	"energyeda/pkg/records"
)

// Canonical column names produced by the column mapper.
const (
	ColCountry         = "Country"
	ColConsumptionYear = "Date_of_Consumption_and_Loss_Electricity"
	ColConsumption     = "Electricity_Consumption"
	ColLossYear        = "Date_of_Loss_Electricity"
	ColLoss            = "Loss_electricity"
	ColEmissionsYear   = "Year_of_Emissions_of_CarbonDioxide_Electricity"
	ColEmissions       = "Emissions_CarbonDioxide_ElectricityGeneration"
)

// CanonicalMapping maps raw Data Commons export headers to canonical names.
// ColLossYear is a rename target that CanonicalColumns does not retain.
var CanonicalMapping = map[string]string{
	"placeName":                                                  ColCountry,
	"Date:Annual_Consumption_Electricity":                        ColConsumptionYear,
	"Value:Annual_Consumption_Electricity":                       ColConsumption,
	"Date:Annual_Loss_Electricity":                               ColLossYear,
	"Value:Annual_Loss_Electricity":                              ColLoss,
	"Date:Annual_Emissions_CarbonDioxide_ElectricityGeneration":  ColEmissionsYear,
	"Value:Annual_Emissions_CarbonDioxide_ElectricityGeneration": ColEmissions,
}

// CanonicalColumns is the retained schema, in output order.
var CanonicalColumns = []string{
	ColCountry,
	ColConsumptionYear,
	ColConsumption,
	ColLoss,
	ColEmissionsYear,
	ColEmissions,
}

// YearColumns are the columns the type normalizer turns into integers.
var YearColumns = []string{ColConsumptionYear, ColEmissionsYear}

// Rename renames columns according to Mapping. Columns absent from Mapping
// keep their name. When a rename collides with an existing column the
// renamed value wins.
type Rename struct {
	Mapping map[string]string
}

func (r Rename) Apply(in records.Table) (records.Table, error) {
	if len(r.Mapping) == 0 {
		return in, nil
	}
	cols := make([]string, 0, len(in.Columns))
	for _, c := range in.Columns {
		if to, ok := r.Mapping[c]; ok {
			c = to
		}
		if !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	rows := make([]records.Record, len(in.Rows))
	for i, rec := range in.Rows {
		m := make(records.Record, len(rec))
		for k, v := range rec {
			if _, ok := r.Mapping[k]; !ok {
				m[k] = v
			}
		}
		for k, v := range rec {
			if to, ok := r.Mapping[k]; ok {
				m[to] = v
			}
		}
		rows[i] = m
	}
	return records.Table{Columns: cols, Rows: rows}, nil
}

// Project keeps only Columns, in that order. Listed columns the table does
// not have are skipped without error.
type Project struct {
	Columns []string
}

func (p Project) Apply(in records.Table) (records.Table, error) {
	cols := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		if in.HasColumn(c) && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	rows := make([]records.Record, len(in.Rows))
	for i, rec := range in.Rows {
		m := make(records.Record, len(cols))
		for _, c := range cols {
			if v, ok := rec[c]; ok {
				m[c] = v
			}
		}
		rows[i] = m
	}
	return records.Table{Columns: cols, Rows: rows}, nil
}

// Replace rewrites string values of Field that equal From to To.
type Replace struct {
	Field string
	From  string
	To    string
}

func (r Replace) Apply(in records.Table) (records.Table, error) {
	rows := make([]records.Record, len(in.Rows))
	for i, rec := range in.Rows {
		if s, ok := rec[r.Field].(string); ok && s == r.From {
			rec = rec.Clone()
			rec[r.Field] = r.To
		}
		rows[i] = rec
	}
	return in.WithRows(rows), nil
}

type step interface {
	Apply(records.Table) (records.Table, error)
}

// ColumnMapper renames raw headers to the canonical schema, projects the
// canonical columns and fixes the legacy "Macedonia [FYROM]" country name.
type ColumnMapper struct{}

func (ColumnMapper) Apply(in records.Table) (records.Table, error) {
	steps := []step{
		Rename{Mapping: CanonicalMapping},
		Project{Columns: CanonicalColumns},
		Replace{Field: ColCountry, From: "Macedonia [FYROM]", To: "Macedonia"},
	}
	out := in
	for _, s := range steps {
		var err error
		if out, err = s.Apply(out); err != nil {
			return records.Table{}, err
		}
	}
	return out, nil
}
