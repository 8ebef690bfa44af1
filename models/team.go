package models

import (
	"errors"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TeamMember struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Email     *string        `db:"email" json:"email,omitempty"`
	Role      string         `db:"role" json:"role"`
	Channels  pq.StringArray `db:"channels" json:"channels"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Covers reports whether the member owns the given marketing channel.
func (m TeamMember) Covers(channel string) bool {
	return slices.Contains(m.Channels, channel)
}

// Label is the string stored in Task.Assignee for this member.
func (m TeamMember) Label() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Email != nil {
		return *m.Email
	}
	return m.ID
}

type TeamMemberInput struct {
	Name     *string  `json:"name" yaml:"name"`
	Email    *string  `json:"email,omitempty" yaml:"email"`
	Role     *string  `json:"role,omitempty" yaml:"role"`
	Channels []string `json:"channels,omitempty" yaml:"channels"`
}

func (in TeamMemberInput) ValidateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return errors.New("name is required")
	}
	return in.validateFormats()
}

func (in TeamMemberInput) ValidateUpdate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return errors.New("name must not be empty")
	}
	if in.Name == nil && in.Email == nil && in.Role == nil && in.Channels == nil {
		return errors.New("no fields to update")
	}
	return in.validateFormats()
}

func (in TeamMemberInput) validateFormats() error {
	if in.Email != nil && *in.Email != "" {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return errors.New("email is not a valid address")
		}
	}
	for _, channel := range in.Channels {
		if !IsValidChannel(channel) {
			return errors.New("unknown channel " + channel)
		}
	}
	return nil
}

func (in TeamMemberInput) Record(create bool, now time.Time) Record {
	rec := Record{}
	if in.Name != nil {
		rec["name"] = strings.TrimSpace(*in.Name)
	}
	setOptional(rec, "email", in.Email)
	if in.Role != nil {
		rec["role"] = *in.Role
	}
	if in.Channels != nil {
		rec["channels"] = pq.StringArray(in.Channels)
	}
	if create {
		rec["id"] = uuid.NewString()
		if in.Role == nil {
			rec["role"] = "member"
		}
		if in.Channels == nil {
			rec["channels"] = pq.StringArray{}
		}
		rec["created_at"] = now
	}
	return rec
}

type UserProfile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  *string   `db:"full_name" json:"full_name,omitempty"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UserProfileInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (in UserProfileInput) Validate() error {
	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return errors.New("email is not a valid address")
		}
	}
	if in.Role != nil && *in.Role != "admin" && *in.Role != "member" {
		return errors.New("role must be admin or member")
	}
	if in.Email == nil && in.FullName == nil && in.Role == nil {
		return errors.New("no fields to update")
	}
	return nil
}

func (in UserProfileInput) Record(now time.Time) Record {
	rec := Record{"updated_at": now}
	if in.Email != nil {
		rec["email"] = *in.Email
	}
	setOptional(rec, "full_name", in.FullName)
	if in.Role != nil {
		rec["role"] = *in.Role
	}
	return rec
}
