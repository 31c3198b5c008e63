// Package sqlite implements a SQLite-backed storage.Repository for key
// sets using database/sql. Batches are inserted inside a transaction with
// INSERT OR IGNORE, so reloading a lexicon is idempotent.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver; registers as "sqlite"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed to database/sql, e.g. "lexkit.db" or
	// "file:lexkit.db?cache=shared".
	DSN string

	// Table is the key table name.
	Table string

	// Column is the key column name. Default "key".
	Column string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite database using cfg and pings it with a short
// timeout to fail fast on bad DSNs.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}
	if cfg.Column == "" {
		cfg.Column = "key"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// SQLite has a single writer; one connection also keeps :memory:
	// databases coherent across statements.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, nil
}

// EnsureTable creates the key table when absent. The key column is the
// primary key, which gives the dedup backstop at the engine level.
func (r *Repository) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY) WITHOUT ROWID",
		quoteIdent(r.cfg.Table), quoteIdent(r.cfg.Column),
	)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", r.cfg.Table, err)
	}
	return nil
}

// InsertKeys inserts a batch inside one transaction using a prepared
// INSERT OR IGNORE. It returns the number of rows actually added.
func (r *Repository) InsertKeys(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	stmtSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (?)",
		quoteIdent(r.cfg.Table), quoteIdent(r.cfg.Column),
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
	for _, k := range keys {
		res, err := stmt.ExecContext(ctx, k)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert key: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// CountKeys returns the number of rows in the key table. Used by callers and
// tests to verify load results.
func (r *Repository) CountKeys(ctx context.Context) (int64, error) {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(r.cfg.Table))
	var n int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// quoteIdent double-quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
