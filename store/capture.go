package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InsertCapture records one observed response. The referenced blob must
// already exist (write blob first, capture second; the foreign key
// enforces the order). The capture's ID is assigned here; the method is
// normalized to upper case. Returns the new capture ID.
func (s *Store) InsertCapture(ctx context.Context, c *Capture) (string, error) {
	if c.Status < 100 || c.Status > 599 {
		return "", fmt.Errorf("%w: %d", ErrInvalidStatus, c.Status)
	}
	if c.BlobDigest == "" {
		return "", ErrUnknownDigest
	}

	c.ID = s.newID()
	c.Method = strings.ToUpper(c.Method)
	if c.Method == "" {
		c.Method = "GET"
	}
	if c.Timestamp == 0 {
		c.Timestamp = time.Now().UnixMilli()
	}

	var headers any
	if c.Headers != nil {
		data, err := json.Marshal(c.Headers)
		if err != nil {
			return "", fmt.Errorf("store: marshal headers: %w", err)
		}
		headers = string(data)
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO captures (id, session_id, url, method, headers, status, blob_digest, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.URL, c.Method, headers, c.Status, c.BlobDigest, c.Timestamp)
	if err != nil {
		return "", fmt.Errorf("store: insert capture: %w", err)
	}
	return c.ID, nil
}

// GetCapture retrieves a capture by ID, or nil if not found.
func (s *Store) GetCapture(ctx context.Context, id string) (*Capture, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, session_id, url, method, headers, status, blob_digest, timestamp
		 FROM captures WHERE id = ?`, id)
	return scanCapture(row)
}

// CountCaptures returns the total number of stored captures.
func (s *Store) CountCaptures(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&n)
	return n, err
}

// DistinctURLs returns up to limit distinct captured URLs in
// lexicographic order. This is the miner's input sample; the ordering
// makes analysis runs deterministic for the same stored data.
func (s *Store) DistinctURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT DISTINCT url FROM captures ORDER BY url LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: distinct urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("store: scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// SampleBody returns the stored body of the first capture for a URL, or
// nil if none exists. Used by the miner's primary-key inference.
func (s *Store) SampleBody(ctx context.Context, url string) ([]byte, error) {
	var body string
	err := s.DB.QueryRowContext(ctx,
		`SELECT b.body FROM captures c
		 JOIN blobs b ON c.blob_digest = b.digest
		 WHERE c.url = ? LIMIT 1`, url).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: sample body: %w", err)
	}
	return []byte(body), nil
}

func scanCapture(row *sql.Row) (*Capture, error) {
	var c Capture
	var headers sql.NullString
	err := row.Scan(&c.ID, &c.SessionID, &c.URL, &c.Method, &headers,
		&c.Status, &c.BlobDigest, &c.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan capture: %w", err)
	}
	if headers.Valid {
		if err := json.Unmarshal([]byte(headers.String), &c.Headers); err != nil {
			return nil, fmt.Errorf("scan capture headers: %w", err)
		}
	}
	return &c, nil
}
