package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"energyeda/internal/schema"
	"energyeda/internal/storage/sqlite"
	"energyeda/pkg/records"
)

// ExploreOptions configures one explorer session.
type ExploreOptions struct {
	Job       string
	Table     string // defaults to "dataset"
	BatchSize int    // defaults to 1
}

// Stage creates Table in repo from t's inferred schema and inserts every row
// in batches.
func Stage(ctx context.Context, repo Repository, t records.Table, opt ExploreOptions) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("stage %s: table has no columns", opt.Table)
	}
	def := schema.ForTable(opt.Table, t)
	if err := repo.CreateTable(ctx, def); err != nil {
		return 0, fmt.Errorf("stage %s: %w", opt.Table, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return LoadBatches(ctx, opt.Job, def.ColumnNames(), Rows(ctx, t), opt.BatchSize, repo.CopyFrom)
}

// Explore stages t into a private in-memory SQLite database and runs query
// against it. The prefix check only turns away obvious writes; the
// connection is switched to query_only before query runs, so a write hidden
// behind WITH or a second statement fails inside SQLite. The database is
// discarded before Explore returns.
func Explore(ctx context.Context, t records.Table, query string, opt ExploreOptions) (records.Table, error) {
	if !readOnly(query) {
		return records.Table{}, fmt.Errorf("explore: only SELECT or WITH queries are allowed")
	}
	if opt.Table == "" {
		opt.Table = "dataset"
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = 1
	}

	repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{DSN: sqlite.MemoryDSN, Table: opt.Table})
	if err != nil {
		return records.Table{}, fmt.Errorf("explore: %w", err)
	}
	defer closeFn()

	n, err := Stage(ctx, repo, t, opt)
	if err != nil {
		return records.Table{}, fmt.Errorf("explore: %w", err)
	}
	log := zerolog.Ctx(ctx)
	if log.Debug().Enabled() {
		if ddl, err := repo.Schema(ctx, opt.Table); err == nil {
			log.Debug().Str("table", opt.Table).Int64("rows", n).Str("ddl", ddl).Msg("dataset staged")
		}
	}
	if err := repo.Exec(ctx, "PRAGMA query_only = ON"); err != nil {
		return records.Table{}, fmt.Errorf("explore: %w", err)
	}

	out, err := repo.Query(ctx, query)
	if err != nil {
		return records.Table{}, fmt.Errorf("explore: %w", err)
	}
	return out, nil
}

func readOnly(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "SELECT") || strings.HasPrefix(q, "WITH")
}
