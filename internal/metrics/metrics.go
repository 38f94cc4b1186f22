// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the analysis pipeline.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// Concrete systems live in subpackages (prompush, datadog) so the pipeline
// stages only depend on this package.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the pipeline.
const (
	StepTotal    = "eda_step_total"
	StepDuration = "eda_step_duration_seconds"
	RecordsTotal = "eda_records_total"
	BatchesTotal = "eda_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one pipeline stage
// ("load", "merge", "clean", "map_columns", "normalize", "filter", "rank", ...).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "loaded"   rows read from all sources
//   - "dropped"  rows removed by the cleaner
//   - "skipped"  malformed rows skipped in soft-fail parsing
//   - "europe", "asia" rows selected per continent
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments a batch-level counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
