package store

import (
	"context"
	"errors"
	"fmt"

	"marketing-ops/models"

	"github.com/pocketbase/dbx"
)

func (s *Store) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	members := []models.TeamMember{}
	err := s.db.Select("*").
		From("team_members").
		OrderBy("name ASC").
		WithContext(ctx).
		All(&members)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	return members, nil
}

func (s *Store) GetTeamMember(ctx context.Context, id string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := s.db.Select("*").
		From("team_members").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&member)
	if err != nil {
		return nil, notFound(err)
	}
	return &member, nil
}

func (s *Store) UpdateTeamMember(ctx context.Context, id string, rec models.Record) error {
	return s.updateByID(ctx, "team_members", id, rec)
}

func (s *Store) DeleteTeamMember(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "team_members", id)
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Select("*").
		From("user_profiles").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&profile)
	if err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// UpsertProfile updates the profile or creates it when it does not exist.
// Creating a profile requires an email.
func (s *Store) UpsertProfile(ctx context.Context, id string, rec models.Record) (*models.UserProfile, error) {
	err := s.updateByID(ctx, "user_profiles", id, rec)
	if errors.Is(err, ErrNotFound) {
		if _, ok := rec["email"]; !ok {
			return nil, errors.New("email is required to create a profile")
		}
		create := models.Record{"id": id, "created_at": rec["updated_at"]}
		for k, v := range rec {
			create[k] = v
		}
		if _, ok := create["role"]; !ok {
			create["role"] = "member"
		}
		_, err = s.Insert(ctx, "user_profiles", create, false)
	}
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, id)
}
