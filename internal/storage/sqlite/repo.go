// Package sqlite implements the explorer's SQLite repository on top of
// database/sql and the pure-Go modernc.org/sqlite driver. Inserts run in
// one transaction per batch through a prepared statement.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"energyeda/internal/schema"
	"energyeda/pkg/records"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = "file::memory:"

// Config holds repository configuration.
type Config struct {
	// DSN is passed to the driver, e.g. MemoryDSN or "file:eda.db".
	DSN string

	// Table is the target of CopyFrom.
	Table string
}

// Repository is a SQLite-backed table store.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the database and returns the repository plus a close
// function. The pool is pinned to one connection because every connection
// to an in-memory database sees its own empty database.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, func() { db.Close() }, nil
}

// Exec executes a statement, typically DDL. Blank statements are skipped.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// CreateTable creates def if it does not exist.
func (r *Repository) CreateTable(ctx context.Context, def schema.TableDef) error {
	stmt, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return r.Exec(ctx, stmt)
}

// CopyFrom inserts rows into the configured table in one transaction. Every
// row must have len(columns) values.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(r.cfg.Table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Query runs a statement and collects the result set into a table. BLOB
// values are returned as strings.
func (r *Repository) Query(ctx context.Context, query string, args ...any) (records.Table, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return records.Table{}, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return records.Table{}, fmt.Errorf("sqlite: columns: %w", err)
	}
	out := records.New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return records.Table{}, fmt.Errorf("sqlite: scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out.Rows = append(out.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return records.Table{}, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

// Schema returns the CREATE statement stored for table.
func (r *Repository) Schema(ctx context.Context, table string) (string, error) {
	var ddl string
	err := r.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&ddl)
	if err != nil {
		return "", fmt.Errorf("sqlite: schema of %s: %w", table, err)
	}
	return ddl, nil
}
