// Package history keeps an audit log of garage door commands.
//
// Every open/close call dispatched by the device controller is recorded with its
// outcome. Entries live in a local SQLite file by default, or in PostgreSQL when the
// configured DSN is a postgres:// URL, so several machines can share one log.
package history

import (
	"context"
	"fmt"
	"time"

	"garagedoor/cli/internal/dsn"

	"github.com/google/uuid"
)

// Entry is one dispatched command.
type Entry struct {
	ID         string
	DeviceID   string
	DeviceName string
	Direction  string
	Function   string
	ResultCode int
	// Error is empty when the cloud accepted the call.
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the call reached the device without error.
func (e Entry) Succeeded() bool { return e.Error == "" }

// NewID returns a fresh entry identifier.
func NewID() string { return uuid.NewString() }

// Recorder accepts completed commands.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store is a Recorder that can also list what it recorded.
type Store interface {
	Recorder
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Open opens the store named by rawDSN: a postgres:// URL, a sqlite:// URL, a plain
// file path, or ":memory:".
func Open(ctx context.Context, rawDSN string) (Store, error) {
	conn, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}
	switch t := dsn.DetectDBType(rawDSN); t {
	case dsn.DBTypePostgreSQL:
		return NewPostgresStore(ctx, conn)
	case dsn.DBTypeSQLite:
		return NewSQLiteStore(conn)
	default:
		return nil, fmt.Errorf("unsupported history store %q", t)
	}
}
