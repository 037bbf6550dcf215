// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses the connection string of the command history store.
package dsn

import "fmt"

// DBType is the storage engine a DSN points at.
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeUnknown    DBType = "unknown"
)

// MemoryDatabase is the SQLite name of a private in-memory database.
const MemoryDatabase = ":memory:"

// DSNInfo contains parsed information from a DSN string.
// For SQLite only Type, Database (the file path) and Params are set.
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the DSN as given.
func (d *DSNInfo) String() string {
	return d.Original
}

// Resolver parses and normalizes DSNs of one engine.
type Resolver interface {
	Parse(dsn string) (*DSNInfo, error)
	Normalize(info *DSNInfo) (string, error)
	Validate(dsn string) error
}

// ParseError represents an error that occurred during DSN parsing.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid history DSN: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid history DSN: %s", e.Reason)
}

// NewParseError creates a new ParseError.
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{DSN: dsn, Reason: reason, Hint: hint}
}
