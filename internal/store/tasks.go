package store

import (
	"context"
	"fmt"

	"marketing-ops/models"

	"github.com/pocketbase/dbx"
)

func (s *Store) ListTasksForEvent(ctx context.Context, eventID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.Select("*").
		From("tasks").
		Where(dbx.HashExp{"event_id": eventID}).
		OrderBy("due_date ASC", "due_time ASC", "title ASC").
		WithContext(ctx).
		All(&tasks)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListOpenTasksDue returns incomplete tasks with a due date in [from, to].
func (s *Store) ListOpenTasksDue(ctx context.Context, from, to string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.Select("*").
		From("tasks").
		Where(dbx.HashExp{"completed": false}).
		AndWhere(dbx.Between("due_date", from, to)).
		OrderBy("due_date ASC", "due_time ASC").
		WithContext(ctx).
		All(&tasks)
	if err != nil {
		return nil, fmt.Errorf("list upcoming tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.db.Select("*").
		From("tasks").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&task)
	if err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, rec models.Record) error {
	return s.updateByID(ctx, "tasks", id, rec)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "tasks", id)
}
