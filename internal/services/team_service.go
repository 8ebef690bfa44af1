package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketing-ops/internal/store"
	"marketing-ops/models"
)

type TeamService struct {
	Store *store.Store
	now   func() time.Time
}

func NewTeamService(s *store.Store) *TeamService {
	return &TeamService{Store: s, now: utcNow}
}

func (s *TeamService) List(ctx context.Context) ([]models.TeamMember, error) {
	return s.Store.ListTeamMembers(ctx)
}

func (s *TeamService) Create(ctx context.Context, in models.TeamMemberInput) (*models.TeamMember, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, invalid(err)
	}

	rec := in.Record(true, s.now())
	if _, err := s.Store.Insert(ctx, "team_members", rec, false); err != nil {
		return nil, fmt.Errorf("create team member: %w", err)
	}
	return s.Store.GetTeamMember(ctx, rec["id"].(string))
}

func (s *TeamService) Update(ctx context.Context, id string, in models.TeamMemberInput) (*models.TeamMember, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.Store.UpdateTeamMember(ctx, id, in.Record(false, s.now())); err != nil {
		return nil, err
	}
	return s.Store.GetTeamMember(ctx, id)
}

func (s *TeamService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteTeamMember(ctx, id)
}

func (s *TeamService) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.Store.GetProfile(ctx, id)
}

func (s *TeamService) UpsertProfile(ctx context.Context, id string, in models.UserProfileInput) (*models.UserProfile, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if in.Email == nil {
		_, err := s.Store.GetProfile(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalidf("email is required to create a profile")
		}
		if err != nil {
			return nil, err
		}
	}
	profile, err := s.Store.UpsertProfile(ctx, id, in.Record(s.now()))
	if err != nil {
		return nil, err
	}
	return profile, nil
}
