package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "ENERGYEDA"

// Env holds the environment overrides. Zero values leave the pipeline as-is.
type Env struct {
	Europe         string `envconfig:"EUROPE"`
	Asia           string `envconfig:"ASIA"`
	Top            int    `envconfig:"TOP"`
	XLSX           string `envconfig:"XLSX"`
	MetricsBackend string `envconfig:"METRICS_BACKEND"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	DatadogAddr    string `envconfig:"DATADOG_ADDR"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv decodes ENERGYEDA_* variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return Env{}, fmt.Errorf("load env: %w", err)
	}
	return e, nil
}

// Apply overlays non-zero env values onto p.
func (e Env) Apply(p *Pipeline) {
	if e.Europe != "" {
		p.SetSource("europe", e.Europe)
	}
	if e.Asia != "" {
		p.SetSource("asia", e.Asia)
	}
	if e.Top > 0 {
		p.Report.TopN = e.Top
	}
	if e.XLSX != "" {
		p.Report.XLSXPath = e.XLSX
	}
	if e.MetricsBackend != "" {
		p.Metrics.Backend = e.MetricsBackend
	}
	if e.PushgatewayURL != "" {
		p.Metrics.PushgatewayURL = e.PushgatewayURL
	}
	if e.DatadogAddr != "" {
		p.Metrics.DatadogAddr = e.DatadogAddr
	}
}

// SetSource points the named source at loc, adding it when absent. Locations
// starting with http:// or https:// become "http" sources, anything else a
// local file.
func (p *Pipeline) SetSource(name, loc string) {
	src := Source{Name: name, Kind: "file", File: SourceFile{Path: loc}}
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		src = Source{Name: name, Kind: "http", HTTP: SourceHTTP{URL: loc}}
	}
	for i := range p.Sources {
		if strings.EqualFold(p.Sources[i].Name, name) {
			// Keep per-source HTTP tuning when only the URL changes.
			if src.Kind == "http" && p.Sources[i].Kind == "http" {
				p.Sources[i].HTTP.URL = loc
				return
			}
			p.Sources[i] = src
			return
		}
	}
	p.Sources = append(p.Sources, src)
}
