package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketing-ops/internal/store"
	"marketing-ops/models"
)

type EventService struct {
	Store *store.Store
	now   func() time.Time
}

func NewEventService(s *store.Store) *EventService {
	return &EventService{Store: s, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	if filter.From != "" {
		if _, err := time.Parse(models.DateLayout, filter.From); err != nil {
			return nil, invalidf("from must use the YYYY-MM-DD format")
		}
	}
	if filter.To != "" {
		if _, err := time.Parse(models.DateLayout, filter.To); err != nil {
			return nil, invalidf("to must use the YYYY-MM-DD format")
		}
	}
	return s.Store.ListEvents(ctx, filter)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.Store.GetEvent(ctx, id)
}

// Create inserts the event through the schema-tolerant inserter and returns
// the stored row together with any columns the database did not accept.
func (s *EventService) Create(ctx context.Context, in models.EventInput) (*models.Event, []string, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, nil, invalid(err)
	}

	rec := in.Record(true, s.now())
	result, err := s.Store.Insert(ctx, "events", rec, false)
	if err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}

	event, err := s.Store.GetEvent(ctx, rec["id"].(string))
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Event created", "event_id", event.ID, "title", event.Title, "dropped", result.Dropped)
	return event, result.Dropped, nil
}

func (s *EventService) Update(ctx context.Context, id string, in models.EventInput) (*models.Event, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.Store.UpdateEvent(ctx, id, in.Record(false, s.now())); err != nil {
		return nil, err
	}
	return s.Store.GetEvent(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.Store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	slog.Info("Event deleted", "event_id", id)
	return nil
}

func (s *EventService) ListInstances(ctx context.Context, eventID string) ([]models.EventInstance, error) {
	if _, err := s.Store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.Store.ListInstances(ctx, eventID)
}

func (s *EventService) CreateInstance(ctx context.Context, eventID string, in models.EventInstanceInput) (*models.EventInstance, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.Store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rec := in.Record(eventID, s.now())
	if _, err := s.Store.Insert(ctx, "event_instances", rec, false); err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return s.Store.GetInstance(ctx, rec["id"].(string))
}

func (s *EventService) DeleteInstance(ctx context.Context, id string) error {
	return s.Store.DeleteInstance(ctx, id)
}
