package store

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestRegexpOnFreshConnection(t *testing.T) {
	// WHAT: REGEXP is available on a database whose first connection was
	// created without any Store existing.
	// WHY: The driver only attaches registered functions to connections
	// opened after registration, and production opens and pings the pool
	// before constructing a Store. Registration therefore happens at
	// package init, ahead of every connection.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var matched bool
	err = db.QueryRow(`SELECT '/api/items/42' REGEXP ?`, `^/api/items/[0-9]+$`).Scan(&matched)
	if err != nil {
		t.Fatalf("regexp on first connection: %v", err)
	}
	if !matched {
		t.Error("expected match")
	}
}
