package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS garagedoor_commands (
	id TEXT PRIMARY KEY,
	device_id TEXT NOT NULL,
	device_name TEXT NOT NULL,
	direction TEXT NOT NULL,
	function TEXT NOT NULL,
	result_code INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS garagedoor_commands_started_at ON garagedoor_commands (started_at DESC);
`

// PostgresStore keeps history in a shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and creates the table if needed.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect history database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Record inserts e.
func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO garagedoor_commands
			(id, device_id, device_name, direction, function, result_code, error, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.DeviceID, e.DeviceName, e.Direction, e.Function, e.ResultCode, e.Error, e.StartedAt, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert command %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, device_id, device_name, direction, function, result_code, error, started_at, duration_ms
		FROM garagedoor_commands ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e  Entry
			ms int64
		)
		err := row.Scan(&e.ID, &e.DeviceID, &e.DeviceName, &e.Direction, &e.Function,
			&e.ResultCode, &e.Error, &e.StartedAt, &ms)
		e.Duration = time.Duration(ms) * time.Millisecond
		return e, err
	})
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
