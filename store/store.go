// Package store provides the data access layer for spectre: the
// content-addressed blob table, the capture history, and the persisted
// resource definitions.
//
// The store is the single source of truth. Capture ingestion appends,
// the miner reads, the query translator reads, retention cleanup deletes.
// All of them share one *sql.DB; SQLite's locking is the only
// coordination.
package store

import (
	"database/sql"
	"log/slog"

	"github.com/Rostezkiy/spectre/idgen"
)

// Store wraps the spectre database.
type Store struct {
	DB     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets a custom generator for capture IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the store logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store from an already-opened database connection.
// The REGEXP SQL function used for URL-pattern matching is registered at
// package init, before any connection can exist.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		DB:     db,
		newID:  idgen.Prefixed("cap_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
