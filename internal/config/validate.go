// Package config provides configuration models and helpers for the pipeline.
//
// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "sources[0].file.path",
// "transform[1].options.types"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers may decide whether to treat
// warnings as fatal or not.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateReport(p.Report)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

// validateSources validates every configured source.
func validateSources(ss []Source) []Issue {
	var issues []Issue

	if len(ss) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		})
	}
	if len(ss) != 2 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sources",
			Message:  fmt.Sprintf("%d sources configured; the analysis expects one Europe and one Asia export", len(ss)),
		})
	}

	for i, s := range ss {
		base := fmt.Sprintf("sources[%d]", i)
		switch s.Kind {
		case "file":
			if strings.TrimSpace(s.File.Path) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".file.path",
					Message:  "file source requires a non-empty path",
				})
			}
		case "http":
			u, err := url.Parse(s.HTTP.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".http.url",
					Message:  fmt.Sprintf("http source requires an absolute http(s) URL, got %q", s.HTTP.URL),
				})
			}
			if s.HTTP.MaxRetries < 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".http.max_retries",
					Message:  "max_retries must not be negative",
				})
			}
		case "":
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  "source kind must not be empty",
			})
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown source kind %q (want file or http)", s.Kind),
			})
		}
	}

	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	switch p.Kind {
	case "", "csv", "xlsx":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q (want csv or xlsx)", p.Kind),
		})
	}

	if c := p.Options.String("comma", ""); len([]rune(c)) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	if !p.Options.Bool("has_header", true) && p.Kind != "xlsx" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.has_header",
			Message:  "headerless input yields col_N names; the column mapper will drop every column",
		})
	}

	return issues
}

// validateTransforms validates the transform chain.
func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	knownKinds := map[string]struct{}{
		"require":     {},
		"map_columns": {},
		"rename":      {},
		"project":     {},
		"replace":     {},
		"coerce":      {},
		"normalize":   {},
	}

	for i, t := range ts {
		path := fmt.Sprintf("transform[%d].kind", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "transform kind must not be empty",
			})
			continue
		}
		if _, ok := knownKinds[t.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}

		opts := fmt.Sprintf("transform[%d].options", i)
		switch t.Kind {
		case "coerce":
			for col, typ := range t.Options.StringMap("types") {
				switch typ {
				case "int", "float", "bool", "date", "string":
				default:
					issues = append(issues, Issue{
						Severity: SeverityError,
						Path:     opts + ".types." + col,
						Message:  fmt.Sprintf("unsupported type %q", typ),
					})
				}
			}
		case "rename":
			if len(t.Options.StringMap("mapping")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     opts + ".mapping",
					Message:  "rename has no mapping; it is a no-op",
				})
			}
		case "project":
			if len(t.Options.StringSlice("columns")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     opts + ".columns",
					Message:  "project requires at least one column",
				})
			}
		case "replace":
			if t.Options.String("field", "") == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     opts + ".field",
					Message:  "replace requires a field",
				})
			}
		}
	}

	return issues
}

// validateReport validates presenter settings.
func validateReport(r Report) []Issue {
	var issues []Issue

	if r.TopN <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.top_n",
			Message:  fmt.Sprintf("top_n=%d; it must be positive", r.TopN),
		})
	}
	if r.PreviewRows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.preview_rows",
			Message:  "preview_rows must not be negative",
		})
	}
	if strings.TrimSpace(r.RankBy) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.rank_by",
			Message:  "rank_by must name a numeric column",
		})
	}
	for i, c := range r.Continents {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "europe", "asia":
		default:
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("report.continents[%d]", i),
				Message:  fmt.Sprintf("unknown continent %q; it will produce no selection", c),
			})
		}
	}
	if r.XLSXPath != "" && !strings.HasSuffix(strings.ToLower(r.XLSXPath), ".xlsx") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "report.xlsx_path",
			Message:  "xlsx_path does not end in .xlsx; spreadsheet tools may refuse to open it",
		})
	}

	return issues
}

// validateMetrics validates the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without a URL; http://localhost:9091 is assumed",
			})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend without an address; 127.0.0.1:8125 is assumed",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.LoadWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.load_workers",
			Message:  "load_workers must not be negative",
		})
	}
	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the explorer falls back to single-row batches", r.BatchSize),
		})
	}

	return issues
}
