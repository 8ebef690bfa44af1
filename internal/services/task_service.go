package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/store"
	"marketing-ops/models"
)

const (
	DefaultUpcomingDays = 7
	MaxUpcomingDays     = 90
)

// ChecklistItem is one entry of the marketing checklist, due DaysBefore days
// before the event date.
type ChecklistItem struct {
	Title      string `json:"title" yaml:"title"`
	Channel    string `json:"channel" yaml:"channel"`
	DaysBefore int    `json:"days_before" yaml:"days_before"`
}

var DefaultChecklist = []ChecklistItem{
	{Title: "Announce on Instagram", Channel: models.ChannelInstagram, DaysBefore: 21},
	{Title: "Create Facebook event", Channel: models.ChannelFacebook, DaysBefore: 21},
	{Title: "Add to website calendar", Channel: models.ChannelWebsite, DaysBefore: 21},
	{Title: "Newsletter feature", Channel: models.ChannelNewsletter, DaysBefore: 14},
	{Title: "Send press release", Channel: models.ChannelPress, DaysBefore: 14},
	{Title: "Print and hang posters", Channel: models.ChannelPoster, DaysBefore: 10},
	{Title: "Instagram reminder story", Channel: models.ChannelInstagram, DaysBefore: 1},
	{Title: "Day-of post", Channel: models.ChannelFacebook, DaysBefore: 0},
}

type GenerateTasksResult struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Dropped []string      `json:"dropped_columns,omitempty"`
	Tasks   []models.Task `json:"tasks"`
}

type TaskService struct {
	Store     *store.Store
	Notifier  *notify.Multi
	Checklist []ChecklistItem
	now       func() time.Time
}

func NewTaskService(s *store.Store, notifier *notify.Multi) *TaskService {
	return &TaskService{
		Store:     s,
		Notifier:  notifier,
		Checklist: DefaultChecklist,
		now:       utcNow,
	}
}

func (s *TaskService) ListForEvent(ctx context.Context, eventID string) ([]models.Task, error) {
	if _, err := s.Store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.Store.ListTasksForEvent(ctx, eventID)
}

// Upcoming returns open tasks due between today and today+days.
func (s *TaskService) Upcoming(ctx context.Context, days int) ([]models.Task, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	if days > MaxUpcomingDays {
		return nil, invalidf("days must be at most %d", MaxUpcomingDays)
	}

	today := s.now()
	from := today.Format(models.DateLayout)
	to := today.AddDate(0, 0, days).Format(models.DateLayout)
	return s.Store.ListOpenTasksDue(ctx, from, to)
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.Store.GetTask(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.Store.GetEvent(ctx, *in.EventID); err != nil {
		return nil, err
	}

	rec := in.Record(true, s.now())
	if _, err := s.Store.Insert(ctx, "tasks", rec, false); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.Store.GetTask(ctx, rec["id"].(string))
}

func (s *TaskService) Update(ctx context.Context, id string, in models.TaskInput) (*models.Task, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.Store.UpdateTask(ctx, id, in.Record(false, s.now())); err != nil {
		return nil, err
	}
	return s.Store.GetTask(ctx, id)
}

// Toggle flips the completion flag and notifies the team.
func (s *TaskService) Toggle(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	completed := !task.Completed
	err = s.Store.UpdateTask(ctx, id, models.Record{
		"completed":  completed,
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	task.Completed = completed

	ev := notify.Event{
		Type:  notify.EventTaskReopened,
		Title: "Task reopened: " + task.Title,
		Data:  map[string]any{"task_id": task.ID, "event_id": task.EventID, "channel": task.Channel},
	}
	if completed {
		ev.Type = notify.EventTaskCompleted
		ev.Title = "Task completed: " + task.Title
		if task.Assignee != nil {
			ev.Message = "by " + *task.Assignee
		}
	}
	s.Notifier.Publish(ctx, ev)

	return s.Store.GetTask(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteTask(ctx, id)
}

// Generate creates the checklist tasks for an event. Items whose title already
// exists for the event are skipped, so repeated runs are idempotent.
func (s *TaskService) Generate(ctx context.Context, eventID string) (*GenerateTasksResult, error) {
	event, err := s.Store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	eventDate, err := time.Parse(models.DateLayout, event.Date)
	if err != nil {
		return nil, invalidf("event %s has an invalid date %q", event.ID, event.Date)
	}

	existing, err := s.Store.ListTasksForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t.Title] = true
	}

	members, err := s.Store.ListTeamMembers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &GenerateTasksResult{}
	var records []models.Record
	for _, item := range s.Checklist {
		if seen[item.Title] {
			result.Skipped++
			continue
		}
		seen[item.Title] = true

		in := models.TaskInput{
			EventID: &event.ID,
			Title:   ptr(item.Title),
			Channel: ptr(item.Channel),
			DueDate: ptr(eventDate.AddDate(0, 0, -item.DaysBefore).Format(models.DateLayout)),
		}
		if member, ok := assigneeFor(members, item.Channel); ok {
			in.Assignee = ptr(member.Label())
		}
		records = append(records, in.Record(true, now))
	}

	if len(records) > 0 {
		inserted, err := s.Store.InsertMany(ctx, "tasks", records, false)
		if err != nil {
			return nil, fmt.Errorf("generate tasks: %w", err)
		}
		result.Created = len(records)
		result.Dropped = inserted.Dropped
	}

	result.Tasks, err = s.Store.ListTasksForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	slog.Info("Tasks generated", "event_id", eventID, "created", result.Created, "skipped", result.Skipped)
	if result.Created > 0 {
		s.Notifier.Publish(ctx, notify.Event{
			Type:  notify.EventTasksGenerated,
			Title: fmt.Sprintf("%d tasks created for %s", result.Created, event.Title),
			Data:  map[string]any{"event_id": event.ID},
		})
	}
	return result, nil
}

// assigneeFor returns the first member covering channel.
func assigneeFor(members []models.TeamMember, channel string) (models.TeamMember, bool) {
	for _, m := range members {
		if m.Covers(channel) {
			return m, true
		}
	}
	return models.TeamMember{}, false
}

func ptr[T any](v T) *T {
	return &v
}
