// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType picks the engine from the DSN. postgres:// and postgresql:// URLs are
// PostgreSQL; sqlite:// and file: URLs, ":memory:" and bare paths are SQLite.
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case lower == "":
		return DBTypeUnknown
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"), lower == MemoryDatabase:
		return DBTypeSQLite
	case strings.Contains(lower, "://"):
		return DBTypeUnknown
	}
	return DBTypeSQLite
}

func resolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "set history_dsn to a file path or a postgres:// URL")
	}
	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	}
	return nil, NewParseError(dsn, "unknown database type", "use a file path, sqlite://, or postgres://")
}

// Parse parses a DSN and returns the connection string handed to the driver.
func Parse(dsn string) (string, error) {
	r, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// Validate validates a DSN without normalizing it.
func Validate(dsn string) error {
	r, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return r.Validate(dsn)
}

// ParseInfo parses a DSN and returns its parts.
func ParseInfo(dsn string) (*DSNInfo, error) {
	r, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(dsn)
}
