package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------

func TestDecode_JSON(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "eda",
	  "sources": [
	    { "name": "europe", "kind": "file", "file": { "path": "Europe_Country.csv" } },
	    { "name": "asia", "kind": "http", "http": { "url": "https://example.org/asia.csv", "max_retries": 2 } }
	  ],
	  "parser": { "kind": "csv", "options": { "comma": ";", "header_map": { "Land": "placeName" } } },
	  "transform": [
	    { "kind": "require" },
	    { "kind": "coerce", "options": { "strict": true, "types": { "Year": "int" } } }
	  ],
	  "report": { "top_n": 5 }
	}`

	p, err := Decode(".json", []byte(js))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Job != "eda" || len(p.Sources) != 2 {
		t.Fatalf("job/sources = %q/%d", p.Job, len(p.Sources))
	}
	if got := p.Sources[1].Location(); got != "https://example.org/asia.csv" {
		t.Fatalf("asia location = %q", got)
	}
	if p.Sources[1].HTTP.MaxRetries != 2 {
		t.Fatalf("max_retries = %d, want 2", p.Sources[1].HTTP.MaxRetries)
	}
	if got := p.Parser.Options.Rune("comma", ','); got != ';' {
		t.Fatalf("comma = %q", got)
	}
	if got := p.Parser.Options.StringMap("header_map"); !reflect.DeepEqual(got, map[string]string{"Land": "placeName"}) {
		t.Fatalf("header_map = %#v", got)
	}
	if p.Transform[0].Options == nil {
		t.Fatalf("missing options should decode to a usable map")
	}
	if got := p.Transform[1].Options.StringMap("types")["Year"]; got != "int" {
		t.Fatalf("coerce type = %q", got)
	}

	// Explicit values win; zero values are defaulted.
	if p.Report.TopN != 5 {
		t.Fatalf("top_n = %d, want 5", p.Report.TopN)
	}
	if p.Report.RankBy != "Electricity_Consumption" {
		t.Fatalf("rank_by default = %q", p.Report.RankBy)
	}
	if !reflect.DeepEqual(p.Report.Continents, []string{"Europe", "Asia"}) {
		t.Fatalf("continents default = %v", p.Report.Continents)
	}
}

func TestDecode_JSONRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	if _, err := Decode(".json", []byte(`{"job":"x","storage":{}}`)); err == nil {
		t.Fatalf("expected error for unknown top-level field")
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	const y = `
job: eda
sources:
  - name: europe
    file:
      path: eu.xlsx
parser:
  kind: xlsx
  options:
    sheet: Data
transform:
  - kind: project
    options:
      columns: [Country, Electricity_Consumption]
report:
  top_n: 3
  preview_rows: 20
`
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(y), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Sources[0].Kind != "file" {
		t.Fatalf("source kind default = %q, want file", p.Sources[0].Kind)
	}
	if p.Parser.Options.String("sheet", "") != "Data" {
		t.Fatalf("sheet = %q", p.Parser.Options.String("sheet", ""))
	}
	if got := p.Transform[0].Options.StringSlice("columns"); !reflect.DeepEqual(got, []string{"Country", "Electricity_Consumption"}) {
		t.Fatalf("columns = %#v", got)
	}
	if p.Report.TopN != 3 || p.Report.PreviewRows != 20 {
		t.Fatalf("report = %+v", p.Report)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestEnvApply(t *testing.T) {
	t.Parallel()

	p := Default()
	Env{
		Europe:         "https://example.org/eu.csv",
		Top:            3,
		MetricsBackend: "datadog",
	}.Apply(&p)

	if p.Sources[0].Kind != "http" || p.Sources[0].HTTP.URL != "https://example.org/eu.csv" {
		t.Fatalf("europe source = %+v", p.Sources[0])
	}
	if p.Sources[1].File.Path != "Asia_Country.csv" {
		t.Fatalf("asia source changed: %+v", p.Sources[1])
	}
	if p.Report.TopN != 3 || p.Metrics.Backend != "datadog" {
		t.Fatalf("report/metrics = %+v / %+v", p.Report, p.Metrics)
	}
}

func TestSetSource_AddsUnknownName(t *testing.T) {
	t.Parallel()

	var p Pipeline
	p.SetSource("africa", "africa.csv")
	if len(p.Sources) != 1 || p.Sources[0].Location() != "africa.csv" {
		t.Fatalf("sources = %+v", p.Sources)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ENERGYEDA_ASIA", "asia.xlsx")
	t.Setenv("ENERGYEDA_TOP", "7")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.Asia != "asia.xlsx" || e.Top != 7 {
		t.Fatalf("env = %+v", e)
	}
	if e.LogLevel != "info" {
		t.Fatalf("log level default = %q", e.LogLevel)
	}
}

// -----------------------------------------------------------------------------
// Options helper tests
// -----------------------------------------------------------------------------

func TestOptions_String_Bool_Int_Rune_DefaultsAndCoercion(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":  "hello",
		"b":  true,
		"i":  float64(42), // encoding/json decodes numbers as float64
		"iy": 7,           // yaml.v3 decodes integers as int
		"r":  ",",
	}

	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}
	if got := o.Bool("b", false); got != true {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	if got := o.Int("iy", 0); got != 7 {
		t.Fatalf("Int(iy) = %d, want 7", got)
	}
	if got := o.Int("s", 9); got != 9 {
		t.Fatalf("Int(s) = %d, want default 9", got)
	}
	if got := o.Rune("r", ';'); got != ',' {
		t.Fatalf("Rune(r) = %q, want ','", got)
	}
	o["r2"] = "ž"
	if got := o.Rune("r2", 'x'); got != 'ž' {
		t.Fatalf("Rune(r2) = %q, want ž", got)
	}
}

func TestOptions_StringMap_StringSlice_Any(t *testing.T) {
	t.Parallel()

	o := Options{
		"m":  map[string]any{"A": "a", "B": "b", "X": 1},
		"s1": []any{"alpha", "beta", 3},
		"s2": []string{"gamma", "delta"},
	}

	if sm := o.StringMap("m"); !reflect.DeepEqual(sm, map[string]string{"A": "a", "B": "b"}) {
		t.Fatalf("StringMap(m) = %#v, want {A:a B:b}", sm)
	}
	if sm := o.StringMap("missing"); sm == nil || len(sm) != 0 {
		t.Fatalf("StringMap(missing) = %#v, want empty map", sm)
	}
	if ss := o.StringSlice("s1"); !reflect.DeepEqual(ss, []string{"alpha", "beta"}) {
		t.Fatalf("StringSlice(s1) = %#v, want [alpha beta]", ss)
	}
	if ss := o.StringSlice("s2"); !reflect.DeepEqual(ss, []string{"gamma", "delta"}) {
		t.Fatalf("StringSlice(s2) = %#v", ss)
	}
	if got := o.StringSlice("missing"); got != nil {
		t.Fatalf("StringSlice(missing) = %#v, want nil", got)
	}
}

func TestOptions_UnmarshalJSON_NullYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	var w struct {
		Opts Options `json:"options"`
	}
	if err := json.Unmarshal([]byte(`{"options": null}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts == nil || len(w.Opts) != 0 {
		t.Fatalf("Opts after null unmarshal = %#v, want non-nil empty map", w.Opts)
	}
}
