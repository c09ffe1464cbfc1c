package store

import (
	"context"
	"fmt"
)

// ReplaceResources atomically replaces the persisted resource table with
// the given set. The registry calls this after every reload so the
// definitions survive restarts.
func (s *Store) ReplaceResources(ctx context.Context, resources []Resource) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: replace resources: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM resources`); err != nil {
		return fmt.Errorf("store: clear resources: %w", err)
	}
	for _, r := range resources {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO resources (name, url_pattern, method, primary_key) VALUES (?, ?, ?, ?)`,
			r.Name, r.URLPattern, r.Method, r.PrimaryKey)
		if err != nil {
			return fmt.Errorf("store: insert resource %s: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// ListResources returns all persisted resource definitions ordered by name.
func (s *Store) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT name, url_pattern, method, primary_key FROM resources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list resources: %w", err)
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.Name, &r.URLPattern, &r.Method, &r.PrimaryKey); err != nil {
			return nil, fmt.Errorf("store: scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}
