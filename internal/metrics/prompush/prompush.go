// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A batch run has no long-lived HTTP endpoint to scrape, so
// collected values are pushed once at the end of the run.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"energyeda/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	instance   string // optional grouping key, e.g. the run id
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.SummaryVec
	recordCounter *prometheus.CounterVec
	batchCounter  prometheus.Counter
}

// NewBackend constructs a Prometheus Pushgateway backend. jobName becomes the
// Pushgateway job; an empty name falls back to "energy_eda".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "energy_eda"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline stage executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of pipeline stages in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Row counts per kind (loaded, dropped, skipped, europe, asia).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Insert batches flushed into the in-memory explorer.",
		},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, recordCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		batchCounter:  batchCounter,
	}, nil
}

// WithInstance adds an "instance" grouping key to pushes so concurrent runs
// of the same job do not overwrite each other.
func (b *Backend) WithInstance(id string) *Backend {
	b.instance = id
	return b
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.instance != "" {
		p = p.Grouping("instance", b.instance)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
