// Package pipeline runs the analysis end to end: load the continent exports,
// merge them, run the transform chain, then filter and rank per continent.
// Each stage is timed into the metrics backend and logged.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"energyeda/internal/config"
	"energyeda/internal/continent"
	"energyeda/internal/metrics"
	"energyeda/internal/rank"
	"energyeda/internal/transformer"
	"energyeda/pkg/records"
)

// Ranking is the ranked selection for one continent.
type Ranking struct {
	Continent continent.Continent
	// Selected counts every member row before the top-N cut.
	Selected int
	Top      records.Table
}

// Result is what the presenter consumes.
type Result struct {
	// Dataset is the merged, cleaned, mapped and type-normalized table.
	Dataset  records.Table
	Rankings []Ranking
	// Unselected lists configured selectors that name no continent. They
	// produce no Ranking, which is distinct from a Ranking with zero rows.
	Unselected []string
	Loaded     int
	Skipped    int
}

// Ranking returns the ranking for c, if it was computed.
func (r Result) Ranking(c continent.Continent) (Ranking, bool) {
	for _, rk := range r.Rankings {
		if rk.Continent == c {
			return rk, true
		}
	}
	return Ranking{}, false
}

// Run executes the pipeline described by cfg.
func Run(ctx context.Context, cfg config.Pipeline, log zerolog.Logger) (Result, error) {
	job := cfg.Job
	var res Result

	chain, err := transformer.Build(cfg.Transform)
	if err != nil {
		return Result{}, err
	}

	loaded, err := timed(job, "load", func() ([]Loaded, error) {
		return LoadAll(ctx, cfg.Sources, cfg.Parser, cfg.Runtime.LoadWorkers, log)
	})
	if err != nil {
		return Result{}, err
	}

	tables := make([]records.Table, len(loaded))
	for i, l := range loaded {
		tables[i] = l.Table
		res.Loaded += l.Table.Len()
		res.Skipped += l.Skipped
	}
	metrics.RecordRows(job, "loaded", int64(res.Loaded))
	metrics.RecordRows(job, "skipped", int64(res.Skipped))

	t, _ := timed(job, "merge", func() (records.Table, error) {
		return records.Concat(tables...), nil
	})
	logStage(log, "merge", t)

	for _, s := range chain {
		in := t
		t, err = timed(job, s.Kind, func() (records.Table, error) { return s.Apply(in) })
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", s.Kind, err)
		}
		if d := in.Len() - t.Len(); d > 0 {
			metrics.RecordRows(job, "dropped", int64(d))
		}
		logStage(log, s.Kind, t)
	}
	res.Dataset = t

	for _, name := range cfg.Report.Continents {
		c, ok := continent.Parse(name)
		if !ok {
			log.Warn().Str("continent", name).Msg("unknown continent; no selection")
			res.Unselected = append(res.Unselected, name)
			continue
		}
		rk, err := timed(job, "rank", func() (Ranking, error) {
			return TopByContinent(t, c, cfg.Report.RankBy, cfg.Report.TopN)
		})
		if err != nil {
			return Result{}, fmt.Errorf("rank %s: %w", c, err)
		}
		metrics.RecordRows(job, strings.ToLower(string(c)), int64(rk.Selected))
		log.Info().
			Str("continent", string(c)).
			Int("selected", rk.Selected).
			Int("shown", rk.Top.Len()).
			Msg("continent ranked")
		res.Rankings = append(res.Rankings, rk)
	}

	return res, nil
}

// TopByContinent filters t to c's members, ranks them by column (largest
// first) and keeps the first n.
func TopByContinent(t records.Table, c continent.Continent, column string, n int) (Ranking, error) {
	sel, ok := continent.Filter(t, c)
	if !ok {
		return Ranking{}, fmt.Errorf("unknown continent %q", c)
	}
	ranked, err := rank.ByDesc(sel, column)
	if err != nil {
		return Ranking{}, err
	}
	return Ranking{Continent: c, Selected: sel.Len(), Top: rank.Top(ranked, n)}, nil
}

func timed[T any](job, step string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordStep(job, step, err, time.Since(start))
	return v, err
}

func logStage(log zerolog.Logger, step string, t records.Table) {
	e := log.Debug()
	if !e.Enabled() {
		return
	}
	e.Str("step", step).
		Int("rows", t.Len()).
		Strs("columns", t.Columns).
		Str("fingerprint", fmt.Sprintf("%016x", records.Fingerprint(t))).
		Msg("stage done")
}
