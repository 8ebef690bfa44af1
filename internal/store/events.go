package store

import (
	"context"
	"fmt"

	"marketing-ops/models"

	"github.com/pocketbase/dbx"
)

// ListEvents returns events in the optional [From, To] date range ordered by
// date and time.
func (s *Store) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	q := s.db.Select("*").From("events")
	if filter.From != "" {
		q.AndWhere(dbx.NewExp("[[date]] >= {:from}", dbx.Params{"from": filter.From}))
	}
	if filter.To != "" {
		q.AndWhere(dbx.NewExp("[[date]] <= {:to}", dbx.Params{"to": filter.To}))
	}
	if filter.Limit > 0 {
		q.Limit(int64(filter.Limit))
	}

	events := []models.Event{}
	if err := q.OrderBy("date ASC", "time ASC").WithContext(ctx).All(&events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListEventsForDedupe returns every event ordered by date then creation time.
func (s *Store) ListEventsForDedupe(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := s.db.Select("*").
		From("events").
		OrderBy("date ASC", "created_at ASC").
		WithContext(ctx).
		All(&events)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.db.Select("*").
		From("events").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&event)
	if err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, rec models.Record) error {
	return s.updateByID(ctx, "events", id, rec)
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "events", id)
}

// EventKeys returns the dedupe keys of all stored events.
func (s *Store) EventKeys(ctx context.Context) (map[string]bool, error) {
	rows := []struct {
		Date  string `db:"date"`
		Title string `db:"title"`
	}{}
	if err := s.db.Select("date", "title").From("events").WithContext(ctx).All(&rows); err != nil {
		return nil, fmt.Errorf("list event keys: %w", err)
	}

	keys := make(map[string]bool, len(rows))
	for _, row := range rows {
		keys[models.Event{Date: row.Date, Title: row.Title}.DedupeKey()] = true
	}
	return keys, nil
}

func (s *Store) ListInstances(ctx context.Context, eventID string) ([]models.EventInstance, error) {
	instances := []models.EventInstance{}
	err := s.db.Select("*").
		From("event_instances").
		Where(dbx.HashExp{"event_id": eventID}).
		OrderBy("date ASC", "time ASC").
		WithContext(ctx).
		All(&instances)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	return instances, nil
}

func (s *Store) GetInstance(ctx context.Context, id string) (*models.EventInstance, error) {
	var instance models.EventInstance
	err := s.db.Select("*").
		From("event_instances").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&instance)
	if err != nil {
		return nil, notFound(err)
	}
	return &instance, nil
}

func (s *Store) DeleteInstance(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "event_instances", id)
}
