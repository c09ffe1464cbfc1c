package store

import "database/sql"

// Schema is the complete spectre schema. All statements are idempotent.
const Schema = `
-- Content-addressed response bodies: one row per distinct digest.
CREATE TABLE IF NOT EXISTS blobs (
    digest     TEXT PRIMARY KEY,
    body       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

-- One row per observed HTTP response.
CREATE TABLE IF NOT EXISTS captures (
    id          TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL,
    url         TEXT NOT NULL,
    method      TEXT NOT NULL,
    headers     TEXT,
    status      INTEGER NOT NULL,
    blob_digest TEXT NOT NULL REFERENCES blobs(digest),
    timestamp   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_url ON captures(url);
CREATE INDEX IF NOT EXISTS idx_captures_timestamp ON captures(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_captures_session ON captures(session_id);

-- Persisted resource definitions (mirror of the in-memory registry).
CREATE TABLE IF NOT EXISTS resources (
    name        TEXT PRIMARY KEY,
    url_pattern TEXT NOT NULL,
    method      TEXT NOT NULL,
    primary_key TEXT NOT NULL DEFAULT ''
);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
