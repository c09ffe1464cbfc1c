package store

import (
	"context"
	"fmt"
	"time"
)

// DeleteOlderThan deletes all captures older than now minus the given
// number of days, then deletes every blob no longer referenced by any
// remaining capture. Both deletes run in one transaction: no reader can
// observe a blob deleted while a capture still references it, and a
// failure aborts the whole cleanup. Returns the number of deleted
// captures.
func (s *Store) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: retention: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM captures WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: delete old captures: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: retention count: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM blobs WHERE digest NOT IN (SELECT DISTINCT blob_digest FROM captures)`)
	if err != nil {
		return 0, fmt.Errorf("store: delete orphan blobs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: retention commit: %w", err)
	}

	s.logger.Info("store: retention cleanup", "deleted_captures", deleted, "older_than_days", days)
	return deleted, nil
}
