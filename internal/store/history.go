package store

import (
	"context"
	"fmt"

	"marketing-ops/models"

	"github.com/pocketbase/dbx"
)

// ListHistory returns the most recent historical content, optionally for a
// single channel.
func (s *Store) ListHistory(ctx context.Context, channel string, limit int) ([]models.HistoricalContent, error) {
	q := s.db.Select("*").From("historical_content")
	if channel != "" {
		q.Where(dbx.HashExp{"channel": channel})
	}
	if limit > 0 {
		q.Limit(int64(limit))
	}

	items := []models.HistoricalContent{}
	if err := q.OrderBy("created_at DESC").WithContext(ctx).All(&items); err != nil {
		return nil, fmt.Errorf("list historical content: %w", err)
	}
	return items, nil
}

// ExistingExternalIDs returns which of the given external ids are already
// stored.
func (s *Store) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := map[string]bool{}
	if len(ids) == 0 {
		return existing, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	var found []string
	err := s.db.Select("external_id").
		From("historical_content").
		Where(dbx.In("external_id", values...)).
		WithContext(ctx).
		Column(&found)
	if err != nil {
		return nil, fmt.Errorf("lookup external ids: %w", err)
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
