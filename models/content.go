package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SourceManual    = "manual"
	SourceInstagram = "instagram"
	SourceFacebook  = "facebook"
)

// HistoricalContent is previously published copy, used as style examples.
type HistoricalContent struct {
	ID          string     `db:"id" json:"id"`
	Channel     string     `db:"channel" json:"channel"`
	Content     string     `db:"content" json:"content"`
	Source      string     `db:"source" json:"source"`
	ExternalID  *string    `db:"external_id" json:"external_id,omitempty"`
	Permalink   *string    `db:"permalink" json:"permalink,omitempty"`
	Likes       int        `db:"likes" json:"likes"`
	Comments    int        `db:"comments" json:"comments"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type HistoricalContentInput struct {
	Channel     string     `json:"channel" yaml:"channel"`
	Content     string     `json:"content" yaml:"content"`
	Source      string     `json:"source,omitempty" yaml:"source"`
	ExternalID  string     `json:"external_id,omitempty" yaml:"external_id"`
	Permalink   string     `json:"permalink,omitempty" yaml:"permalink"`
	Likes       int        `json:"likes,omitempty" yaml:"likes"`
	Comments    int        `json:"comments,omitempty" yaml:"comments"`
	PublishedAt *time.Time `json:"published_at,omitempty" yaml:"published_at"`
}

func (in HistoricalContentInput) Validate() error {
	if !IsValidChannel(in.Channel) {
		return errors.New("channel must be one of: " + strings.Join(Channels, ", "))
	}
	if strings.TrimSpace(in.Content) == "" {
		return errors.New("content is required")
	}
	return nil
}

func (in HistoricalContentInput) Record(now time.Time) Record {
	source := in.Source
	if source == "" {
		source = SourceManual
	}
	rec := Record{
		"id":         uuid.NewString(),
		"channel":    in.Channel,
		"content":    in.Content,
		"source":     source,
		"likes":      in.Likes,
		"comments":   in.Comments,
		"created_at": now,
	}
	if in.ExternalID != "" {
		rec["external_id"] = in.ExternalID
	}
	if in.Permalink != "" {
		rec["permalink"] = in.Permalink
	}
	if in.PublishedAt != nil {
		rec["published_at"] = *in.PublishedAt
	}
	return rec
}
