package storage

import (
	"context"

	"energyeda/internal/schema"
	"energyeda/pkg/records"
)

// Repository is what the explorer needs from a SQL backend.
type Repository interface {
	CreateTable(ctx context.Context, def schema.TableDef) error
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (records.Table, error)
}
