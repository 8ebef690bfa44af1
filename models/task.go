package models

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Marketing channels a task can be tagged with.
const (
	ChannelInstagram  = "instagram"
	ChannelFacebook   = "facebook"
	ChannelNewsletter = "newsletter"
	ChannelPress      = "press"
	ChannelPoster     = "poster"
	ChannelWebsite    = "website"
	ChannelOther      = "other"
)

var Channels = []string{
	ChannelInstagram,
	ChannelFacebook,
	ChannelNewsletter,
	ChannelPress,
	ChannelPoster,
	ChannelWebsite,
	ChannelOther,
}

func IsValidChannel(channel string) bool {
	return slices.Contains(Channels, channel)
}

type Task struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	Title     string    `db:"title" json:"title"`
	Channel   string    `db:"channel" json:"channel"`
	DueDate   string    `db:"due_date" json:"due_date"`
	DueTime   *string   `db:"due_time" json:"due_time,omitempty"`
	Completed bool      `db:"completed" json:"completed"`
	Assignee  *string   `db:"assignee" json:"assignee,omitempty"` // team member name or email
	Content   *string   `db:"content" json:"content,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type TaskInput struct {
	EventID   *string `json:"event_id"`
	Title     *string `json:"title"`
	Channel   *string `json:"channel"`
	DueDate   *string `json:"due_date"`
	DueTime   *string `json:"due_time,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Assignee  *string `json:"assignee,omitempty"`
	Content   *string `json:"content,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (in TaskInput) ValidateCreate() error {
	if in.EventID == nil || *in.EventID == "" {
		return errors.New("event_id is required")
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return errors.New("title is required")
	}
	if in.DueDate == nil || *in.DueDate == "" {
		return errors.New("due_date is required")
	}
	return in.validateFormats()
}

func (in TaskInput) ValidateUpdate() error {
	if in.EventID != nil {
		return errors.New("event_id cannot be changed")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return errors.New("title must not be empty")
	}
	if in.Title == nil && in.Channel == nil && in.DueDate == nil && in.DueTime == nil &&
		in.Completed == nil && in.Assignee == nil && in.Content == nil && in.Notes == nil {
		return errors.New("no fields to update")
	}
	return in.validateFormats()
}

func (in TaskInput) validateFormats() error {
	if in.Channel != nil && !IsValidChannel(*in.Channel) {
		return errors.New("channel must be one of: " + strings.Join(Channels, ", "))
	}
	if in.DueDate != nil {
		if _, err := time.Parse(DateLayout, *in.DueDate); err != nil {
			return errors.New("due_date must use the YYYY-MM-DD format")
		}
	}
	if in.DueTime != nil && *in.DueTime != "" {
		if _, err := time.Parse(TimeLayout, *in.DueTime); err != nil {
			return errors.New("due_time must use the HH:MM format")
		}
	}
	return nil
}

func (in TaskInput) Record(create bool, now time.Time) Record {
	rec := Record{}
	if in.EventID != nil {
		rec["event_id"] = *in.EventID
	}
	if in.Title != nil {
		rec["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Channel != nil {
		rec["channel"] = *in.Channel
	}
	if in.DueDate != nil {
		rec["due_date"] = *in.DueDate
	}
	if in.Completed != nil {
		rec["completed"] = *in.Completed
	}
	setOptional(rec, "due_time", in.DueTime)
	setOptional(rec, "assignee", in.Assignee)
	setOptional(rec, "content", in.Content)
	setOptional(rec, "notes", in.Notes)

	if create {
		rec["id"] = uuid.NewString()
		if in.Channel == nil {
			rec["channel"] = ChannelOther
		}
		if in.Completed == nil {
			rec["completed"] = false
		}
		rec["created_at"] = now
	}
	rec["updated_at"] = now
	return rec
}
