// Package postgres implements a Postgres-backed storage.Repository for key
// sets using pgx v5. Batches are COPYed into a session-local temporary table
// and merged into the target with ON CONFLICT DO NOTHING, which keeps large
// loads fast while staying idempotent.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the pgxpool connection string, e.g. "postgresql://...".
	DSN string

	// Table is the target table name, optionally schema-qualified
	// ("public.lex_keys").
	Table string

	// Column is the key column name. Default "key".
	Column string
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository. The DSN is parsed eagerly so a
// malformed connection string fails here rather than on first use.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	if cfg.Column == "" {
		cfg.Column = "key"
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// EnsureTable creates the target table when absent.
func (r *Repository) EnsureTable(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createTableSQL(r.cfg.Table, r.cfg.Column)); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", r.cfg.Table, err)
	}
	return nil
}

// InsertKeys COPYs the batch into a temp table and merges it into the
// target. It returns the number of rows actually added to the target.
func (r *Repository) InsertKeys(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire conn: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const tmp = "lexkit_keys_stage"
	if _, err := tx.Exec(ctx, fmt.Sprintf(
		"CREATE TEMP TABLE %s (%s TEXT) ON COMMIT DROP",
		pgIdent(tmp), pgIdent(r.cfg.Column),
	)); err != nil {
		return 0, fmt.Errorf("postgres: create temp table: %w", err)
	}

	rows := make([][]any, len(keys))
	for i, k := range keys {
		rows[i] = []any{k}
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{tmp},
		[]string{r.cfg.Column},
		pgx.CopyFromRows(rows),
	); err != nil {
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}

	tag, err := tx.Exec(ctx, mergeSQL(r.cfg.Table, r.cfg.Column, tmp))
	if err != nil {
		return 0, fmt.Errorf("postgres: merge: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the pool.
func (r *Repository) Close() { r.pool.Close() }

// createTableSQL builds the DDL for the target key table.
func createTableSQL(table, column string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)",
		qualIdent(table), pgIdent(column),
	)
}

// mergeSQL builds the dedup-preserving insert from the staging table. The
// staging table may itself contain duplicates (cross-batch reloads), hence
// the DISTINCT.
func mergeSQL(table, column, stage string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT DISTINCT %s FROM %s ON CONFLICT (%s) DO NOTHING",
		qualIdent(table), pgIdent(column), pgIdent(column), pgIdent(stage), pgIdent(column),
	)
}

// pgIdent double-quotes a single identifier, doubling embedded quotes.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// qualIdent quotes a possibly schema-qualified identifier part by part.
func qualIdent(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
