// Package datadog forwards pipeline metrics to a DogStatsD agent. Labels
// become "key:value" tags; counters map to Count and stage durations to
// Histogram.
package datadog

import (
	"fmt"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"energyeda/internal/metrics"
)

// DefaultAddr is the local agent address used when none is configured.
const DefaultAddr = "127.0.0.1:8125"

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace is prefixed to every metric name, e.g. "energyeda.".
	Namespace string

	// GlobalTags are applied to every metric, e.g. "run_id:...".
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend. An empty Addr falls back
// to DefaultAddr.
func NewBackend(cfg Config) (*Backend, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	opts := []statsd.Option{}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client for %s: %w", addr, err)
	}
	return &Backend{client: c}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// Count takes an int64; row and step deltas are always whole.
	_ = b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush closes the client, which sends any buffered datagrams. The backend
// is unusable afterwards; the CLI calls it once at exit.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// labelsToTags converts labels into sorted "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
