// Package config defines the serializable pipeline model for energyeda. A
// pipeline file (JSON or YAML) names the continent sources, how they are
// parsed, the transform chain, and what the presenter should produce.
//
// Example (trimmed):
//
//	{
//	  "job":     "energy_eda",
//	  "sources": [
//	    { "name": "europe", "kind": "file", "file": { "path": "Europe_Country.csv" } },
//	    { "name": "asia",   "kind": "http", "http": { "url": "https://example.org/Asia_Country.csv" } }
//	  ],
//	  "parser":    { "kind": "csv", "options": { "has_header": true } },
//	  "transform": [ { "kind": "require" }, { "kind": "map_columns" }, { "kind": "coerce", "options": { "strict": true, "types": { "Year": "int" } } } ],
//	  "report":    { "top_n": 10, "rank_by": "Electricity_Consumption" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels metrics and log lines for this run.
	Job string `json:"job" yaml:"job"`

	// Sources lists the inputs in merge order.
	Sources []Source `json:"sources" yaml:"sources"`

	// Parser configures how raw bytes are turned into tables.
	Parser Parser `json:"parser" yaml:"parser"`

	// Transform lists the ordered transformations applied to the merged
	// table. Empty means the canonical chain (require, map_columns, coerce).
	Transform []Transform `json:"transform" yaml:"transform"`

	Report  Report        `json:"report" yaml:"report"`
	Explore Explore       `json:"explore" yaml:"explore"`
	Metrics Metrics       `json:"metrics" yaml:"metrics"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// RuntimeConfig controls loading fan-out and explorer batching.
type RuntimeConfig struct {
	// LoadWorkers bounds how many sources are fetched at once. 0 means all.
	LoadWorkers int `json:"load_workers" yaml:"load_workers"`

	// BatchSize is the insert batch size used when staging the dataset into
	// the in-memory explorer.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Source identifies one input table.
type Source struct {
	// Name labels the source in logs ("europe", "asia").
	Name string `json:"name" yaml:"name"`

	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind" yaml:"kind"`

	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// Location returns the path or URL of the source, whichever applies.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.HTTP.URL
	}
	return s.File.Path
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string `json:"url" yaml:"url"`
	TimeoutSeconds     int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Parser selects how to parse the raw source into a table.
type Parser struct {
	// Kind selects the parser: "csv" or "xlsx". Empty picks by file extension.
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV: has_header (bool), comma (string), trim_space (bool),
	// expected_fields (int), header_map (object), skip_malformed (bool).
	// For XLSX: sheet (string), trim_space (bool).
	Options Options `json:"options" yaml:"options"`
}

// Transform defines a single transformation step.
type Transform struct {
	// Kind selects the transform implementation: "require", "map_columns",
	// "rename", "project", "replace", "coerce", "normalize".
	Kind string `json:"kind" yaml:"kind"`

	// Options is a free-form map interpreted by the selected transform.
	Options Options `json:"options" yaml:"options"`
}

// Report configures the presenter.
type Report struct {
	// TopN is how many ranked countries per continent are shown.
	TopN int `json:"top_n" yaml:"top_n"`

	// RankBy is the numeric column used for ranking.
	RankBy string `json:"rank_by" yaml:"rank_by"`

	// Continents lists the continent selectors to filter and rank.
	Continents []string `json:"continents" yaml:"continents"`

	// PreviewRows limits the dataset printout. 0 prints every row.
	PreviewRows int `json:"preview_rows" yaml:"preview_rows"`

	// XLSXPath, when set, writes a workbook with the dataset and rankings.
	XLSXPath string `json:"xlsx_path" yaml:"xlsx_path"`

	Theme Theme `json:"theme" yaml:"theme"`
}

// Theme is the presenter's visual configuration.
type Theme struct {
	TitlePrefix  string `json:"title_prefix" yaml:"title_prefix"`
	NumberFormat string `json:"number_format" yaml:"number_format"`
	HeaderFill   string `json:"header_fill" yaml:"header_fill"`
}

// Explore configures the optional in-memory SQL view of the dataset.
type Explore struct {
	// Table is the table name the dataset is staged under.
	Table string `json:"table" yaml:"table"`

	// Query, when set, is run against the staged dataset and printed.
	Query string `json:"query" yaml:"query"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr"`
	Namespace      string `json:"namespace" yaml:"namespace"`
}

// Default returns the pipeline used when no config file is given: the two
// continent exports in the working directory and the canonical transforms.
func Default() Pipeline {
	return Pipeline{
		Job: "energy_eda",
		Sources: []Source{
			{Name: "europe", Kind: "file", File: SourceFile{Path: "Europe_Country.csv"}},
			{Name: "asia", Kind: "file", File: SourceFile{Path: "Asia_Country.csv"}},
		},
		Parser: Parser{Options: Options{"has_header": true, "trim_space": true}},
		Report: Report{
			TopN:       10,
			RankBy:     "Electricity_Consumption",
			Continents: []string{"Europe", "Asia"},
			Theme:      Theme{NumberFormat: "#,##0", HeaderFill: "#DDEBF7"},
		},
		Explore: Explore{Table: "dataset"},
		Metrics: Metrics{Backend: "none"},
		Runtime: RuntimeConfig{BatchSize: 500},
	}
}

// Load decodes a pipeline file. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON. Zero-valued report, explore and runtime
// fields are filled from Default.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(filepath.Ext(path), b)
}

// Decode parses b as YAML when ext is ".yaml"/".yml", otherwise as JSON.
func Decode(ext string, b []byte) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json config: %w", err)
		}
	}
	p.applyDefaults()
	return p, nil
}

func (p *Pipeline) applyDefaults() {
	d := Default()
	if p.Job == "" {
		p.Job = d.Job
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Report.TopN == 0 {
		p.Report.TopN = d.Report.TopN
	}
	if p.Report.RankBy == "" {
		p.Report.RankBy = d.Report.RankBy
	}
	if len(p.Report.Continents) == 0 {
		p.Report.Continents = d.Report.Continents
	}
	if p.Report.Theme.NumberFormat == "" {
		p.Report.Theme.NumberFormat = d.Report.Theme.NumberFormat
	}
	if p.Report.Theme.HeaderFill == "" {
		p.Report.Theme.HeaderFill = d.Report.Theme.HeaderFill
	}
	if p.Explore.Table == "" {
		p.Explore.Table = d.Explore.Table
	}
	if p.Metrics.Backend == "" {
		p.Metrics.Backend = d.Metrics.Backend
	}
	if p.Runtime.BatchSize == 0 {
		p.Runtime.BatchSize = d.Runtime.BatchSize
	}
	for i := range p.Transform {
		if p.Transform[i].Options == nil {
			p.Transform[i].Options = Options{}
		}
	}
	for i := range p.Sources {
		if p.Sources[i].Kind == "" {
			p.Sources[i].Kind = "file"
		}
	}
}

// Options is a small helper to fetch typed values from arbitrary decoded maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers arrive as float64,
// YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		case map[string]string:
			for k, s := range m {
				res[k] = s
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON decodes a missing or null "options" object to an empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
