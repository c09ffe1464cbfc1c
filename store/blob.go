package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// HashBody computes the SHA-256 hex digest of a response body.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// PutBlob stores a JSON body under its content digest and returns the
// digest. Storing the same bytes twice is a no-op that still returns the
// digest: INSERT OR IGNORE on the digest primary key makes the
// check-then-insert race between concurrent identical captures benign.
// Returns ErrMalformedBody if the bytes are not valid JSON text.
func (s *Store) PutBlob(ctx context.Context, body []byte) (string, error) {
	if !json.Valid(body) {
		return "", ErrMalformedBody
	}

	digest := HashBody(body)
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO blobs (digest, body, created_at) VALUES (?, ?, ?)`,
		digest, string(body), time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("store: put blob: %w", err)
	}
	return digest, nil
}

// GetBlob retrieves a blob by digest, or nil if the digest is unknown.
func (s *Store) GetBlob(ctx context.Context, digest string) (*Blob, error) {
	var b Blob
	err := s.DB.QueryRowContext(ctx,
		`SELECT digest, body, created_at FROM blobs WHERE digest = ?`, digest).
		Scan(&b.Digest, &b.Body, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get blob: %w", err)
	}
	return &b, nil
}

// CountBlobs returns the number of stored blobs.
func (s *Store) CountBlobs(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs`).Scan(&n)
	return n, err
}
