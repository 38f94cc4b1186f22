package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"energyeda/internal/config"
	"energyeda/internal/datasource"
	"energyeda/internal/parser"
	"energyeda/internal/schema"
	"energyeda/pkg/records"
)

// Loaded is one parsed source.
type Loaded struct {
	Source  config.Source
	Table   records.Table
	Kinds   map[string]schema.Kind
	Skipped int
}

// Load opens src, parses it with the parser selected for it and infers
// column kinds. A missing or unreadable source fails with records.ErrIO,
// malformed content with records.ErrParse.
func Load(ctx context.Context, src config.Source, p config.Parser, log zerolog.Logger) (Loaded, error) {
	ds := datasource.New(src)
	rc, err := ds.Open(ctx)
	if err != nil {
		return Loaded{}, fmt.Errorf("load %s: %w", src.Name, err)
	}
	defer rc.Close()

	t, skipped, err := parser.ForSource(src, p, log).Parse(ds.Location(), rc)
	if err != nil {
		return Loaded{}, fmt.Errorf("load %s: %w", src.Name, err)
	}
	t, kinds := schema.Apply(t)

	if e := log.Debug(); e.Enabled() {
		kd := zerolog.Dict()
		for _, c := range t.Columns {
			kd.Str(c, kinds[c].String())
		}
		e.Str("source", src.Name).
			Str("location", ds.Location()).
			Int("rows", t.Len()).
			Int("skipped", skipped).
			Dict("kinds", kd).
			Msg("source loaded")
	}

	return Loaded{Source: src, Table: t, Kinds: kinds, Skipped: skipped}, nil
}

// LoadAll loads every source concurrently, at most workers at a time
// (workers <= 0 means no limit). Results keep the order of srcs. The first
// failure cancels the remaining loads and is returned.
func LoadAll(ctx context.Context, srcs []config.Source, p config.Parser, workers int, log zerolog.Logger) ([]Loaded, error) {
	out := make([]Loaded, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			l, err := Load(gctx, src, p, log)
			if err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
