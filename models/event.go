package models

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Record is a single table row expressed as column -> value.
type Record = map[string]any

type Event struct {
	ID        string             `db:"id" json:"id"`
	Title     string             `db:"title" json:"title"`
	Date      string             `db:"date" json:"date"`
	Time      *string            `db:"time" json:"time,omitempty"`
	Artist    *string            `db:"artist" json:"artist,omitempty"`
	Summary   *string            `db:"summary" json:"summary,omitempty"`
	URL       *string            `db:"url" json:"url,omitempty"`
	Year      *int               `db:"year" json:"year,omitempty"`
	Metadata  types.JSONMap[any] `db:"metadata" json:"metadata"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

// DedupeKey is the natural identity used when resolving duplicate events.
func (e Event) DedupeKey() string {
	return e.Date + "\x00" + e.Title
}

type EventFilter struct {
	From  string
	To    string
	Limit int
}

// EventInput is the writable subset of an Event.
type EventInput struct {
	Title    *string        `json:"title" yaml:"title"`
	Date     *string        `json:"date" yaml:"date"`
	Time     *string        `json:"time,omitempty" yaml:"time"`
	Artist   *string        `json:"artist,omitempty" yaml:"artist"`
	Summary  *string        `json:"summary,omitempty" yaml:"summary"`
	URL      *string        `json:"url,omitempty" yaml:"url"`
	Year     *int           `json:"year,omitempty" yaml:"year"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata"`
}

// ValidateCreate checks the fields required for a new event.
func (in EventInput) ValidateCreate() error {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return errors.New("title is required")
	}
	if in.Date == nil || *in.Date == "" {
		return errors.New("date is required")
	}
	return in.validateFormats()
}

// ValidateUpdate checks a partial update.
func (in EventInput) ValidateUpdate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return errors.New("title must not be empty")
	}
	if in.Title == nil && in.Date == nil && in.Time == nil && in.Artist == nil &&
		in.Summary == nil && in.URL == nil && in.Year == nil && in.Metadata == nil {
		return errors.New("no fields to update")
	}
	return in.validateFormats()
}

func (in EventInput) validateFormats() error {
	if in.Date != nil {
		if _, err := time.Parse(DateLayout, *in.Date); err != nil {
			return errors.New("date must use the YYYY-MM-DD format")
		}
	}
	if in.Time != nil && *in.Time != "" {
		if _, err := time.Parse(TimeLayout, *in.Time); err != nil {
			return errors.New("time must use the HH:MM format")
		}
	}
	return nil
}

// Record converts the input to a row payload. Only set fields are included.
// New rows get an id, a derived year and timestamps.
func (in EventInput) Record(create bool, now time.Time) Record {
	rec := Record{}
	if in.Title != nil {
		rec["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Date != nil {
		rec["date"] = *in.Date
	}
	setOptional(rec, "time", in.Time)
	setOptional(rec, "artist", in.Artist)
	setOptional(rec, "summary", in.Summary)
	setOptional(rec, "url", in.URL)
	if in.Year != nil {
		rec["year"] = *in.Year
	}
	if in.Metadata != nil {
		rec["metadata"] = types.JSONMap[any](in.Metadata)
	}

	if create {
		rec["id"] = uuid.NewString()
		if in.Year == nil && in.Date != nil && len(*in.Date) >= 4 {
			if year, err := strconv.Atoi((*in.Date)[:4]); err == nil {
				rec["year"] = year
			}
		}
		if in.Metadata == nil {
			rec["metadata"] = types.JSONMap[any]{}
		}
		rec["created_at"] = now
	}
	rec["updated_at"] = now
	return rec
}

type EventInstance struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	Date      string    `db:"date" json:"date"`
	Time      *string   `db:"time" json:"time,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type EventInstanceInput struct {
	Date  string  `json:"date"`
	Time  *string `json:"time,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (in EventInstanceInput) Validate() error {
	if in.Date == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return errors.New("date must use the YYYY-MM-DD format")
	}
	return nil
}

func (in EventInstanceInput) Record(eventID string, now time.Time) Record {
	rec := Record{
		"id":         uuid.NewString(),
		"event_id":   eventID,
		"date":       in.Date,
		"created_at": now,
	}
	setOptional(rec, "time", in.Time)
	setOptional(rec, "notes", in.Notes)
	return rec
}

func setOptional(rec Record, column string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		rec[column] = nil
		return
	}
	rec[column] = *value
}
