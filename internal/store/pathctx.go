package store

import (
	"context"
	"time"

	"github.com/qfs-dev/qfs/internal/model"
)

// CreatePathContext inserts or replaces a path-context row keyed by id.
func (s *Store) CreatePathContext(ctx context.Context, c *model.PathContext) error {
	now := c.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var collection any
	if c.Collection != "" {
		collection = c.Collection
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO path_contexts(id, collection, path_prefix, description, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET collection = excluded.collection,
			path_prefix = excluded.path_prefix, description = excluded.description`,
		c.ID, collection, c.PathPrefix, c.Description, now)
	if err != nil {
		return wrapDB("failed to upsert path context", err)
	}
	return nil
}

// RemovePathContext deletes a path-context row by id. It is idempotent.
func (s *Store) RemovePathContext(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM path_contexts WHERE id = ?`, id); err != nil {
		return wrapDB("failed to remove path context", err)
	}
	return nil
}

// ListPathContextsForPrefix returns every context row scoped to the given
// collection or global (collection IS NULL), whatever its path_prefix; the
// caller is internal/pathctx, which applies the prefix/ranking logic (spec §4.4).
func (s *Store) ListPathContextsForPrefix(ctx context.Context, collection string) ([]*model.PathContext, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(collection, ''), path_prefix, description, created_at
		 FROM path_contexts WHERE collection = ? OR collection IS NULL`, collection)
	if err != nil {
		return nil, wrapDB("failed to list path contexts", err)
	}
	defer rows.Close()

	var out []*model.PathContext
	for rows.Next() {
		var c model.PathContext
		if err := rows.Scan(&c.ID, &c.Collection, &c.PathPrefix, &c.Description, &c.CreatedAt); err != nil {
			return nil, wrapDB("failed to scan path context", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB("failed to iterate path contexts", err)
	}
	return out, nil
}
