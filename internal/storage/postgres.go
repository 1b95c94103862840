package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/logging"
)

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS rate_changes (
    state_code     TEXT NOT NULL,
    rating_area_id TEXT NOT NULL,
    metal_level    TEXT NOT NULL,
    issuer         TEXT NOT NULL,
    percentage     TEXT NOT NULL,
    PRIMARY KEY (state_code, rating_area_id, metal_level, issuer)
);
CREATE INDEX IF NOT EXISTS idx_rate_changes_area ON rate_changes(state_code, rating_area_id);
`

// PostgresBackend keeps rate changes in a PostgreSQL database
type PostgresBackend struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
	logger  logging.Logger
}

// NewPostgresBackend connects to dsn and creates the rate_changes table if missing
func NewPostgresBackend(ctx context.Context, dsn string, logger logging.Logger) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store requires a DSN")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &PostgresBackend{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logging.OrNop(logger),
	}
	if err := p.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// CreateSchema creates the rate_changes table.
func (p *PostgresBackend) CreateSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Merge(ctx context.Context, changes []domain.RateChange) error {
	if len(changes) == 0 {
		return nil
	}
	query, args, err := upsertQuery(p.builder, changes)
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert rate changes: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate changes: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Find(ctx context.Context, states, areas []string) ([]domain.RateChange, error) {
	query, args, err := findQuery(p.builder, states, areas)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate changes: %w", err)
	}
	defer rows.Close()

	var changes []domain.RateChange
	for rows.Next() {
		rc, err := scanRateChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rate changes: %w", err)
	}
	domain.SortRateChanges(changes)
	return changes, nil
}

// Close closes the connection pool.
func (p *PostgresBackend) Close() error {
	p.pool.Close()
	return nil
}

// DropSchema drops the rate_changes table. Used by tests.
func (p *PostgresBackend) DropSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DROP TABLE IF EXISTS rate_changes`)
	return err
}
