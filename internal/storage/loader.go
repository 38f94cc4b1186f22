// Package storage stages tables into the in-memory SQL explorer.
//
// LoadBatches drains positional rows from a channel and hands them to a
// backend insert function in fixed-size batches, logging progress through
// the zerolog logger carried by the context.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"energyeda/internal/metrics"
	"energyeda/pkg/records"
)

// CopyFn inserts rows aligned to columns and reports how many were inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches groups rows from in into batches of batchSize and calls copyFn
// for each non-empty batch. It returns the running total reported by copyFn
// and the first error. Every successful flush is counted under job in
// eda_batches_total.
func LoadBatches(
	ctx context.Context,
	job string,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	log := zerolog.Ctx(ctx)
	var (
		total   int64
		batches int64
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			log.Error().Err(err).Int64("inserted", n).Int64("total", total).Msg("batch insert failed")
			return err
		}
		batches++
		metrics.RecordBatches(job, 1)
		log.Debug().
			Int64("batch", batches).
			Int64("inserted", n).
			Int64("total", total).
			Dur("elapsed", time.Since(start)).
			Msg("batch flushed")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// Rows streams the rows of t as positional slices aligned to t.Columns.
// The channel is closed when every row is sent or ctx is done.
func Rows(ctx context.Context, t records.Table) <-chan []any {
	out := make(chan []any)
	go func() {
		defer close(out)
		for _, r := range t.Rows {
			vals := make([]any, len(t.Columns))
			for i, c := range t.Columns {
				vals[i] = r[c]
			}
			select {
			case out <- vals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
