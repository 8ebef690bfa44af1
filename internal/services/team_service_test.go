package services

import (
	"context"
	"testing"

	"marketing-ops/internal/store"
	"marketing-ops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_Members(t *testing.T) {
	svc := NewTeamService(newTestStore(t))
	svc.now = fixedClock
	ctx := context.Background()

	member, err := svc.Create(ctx, models.TeamMemberInput{
		Name:     ptr("Ana"),
		Email:    ptr("ana@example.com"),
		Channels: []string{models.ChannelInstagram},
	})
	require.NoError(t, err)
	assert.Equal(t, "member", member.Role)
	assert.True(t, member.Covers(models.ChannelInstagram))

	member, err = svc.Update(ctx, member.ID, models.TeamMemberInput{Channels: []string{models.ChannelPress, models.ChannelPoster}})
	require.NoError(t, err)
	assert.False(t, member.Covers(models.ChannelInstagram))
	assert.True(t, member.Covers(models.ChannelPoster))

	_, err = svc.Create(ctx, models.TeamMemberInput{Name: ptr("Ben"), Channels: []string{"tiktok"}})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	members, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	require.NoError(t, svc.Delete(ctx, member.ID))
	assert.ErrorIs(t, svc.Delete(ctx, member.ID), store.ErrNotFound)
}

func TestTeamService_Profiles(t *testing.T) {
	svc := NewTeamService(newTestStore(t))
	svc.now = fixedClock
	ctx := context.Background()

	_, err := svc.UpsertProfile(ctx, "user-1", models.UserProfileInput{FullName: ptr("Ana")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	profile, err := svc.UpsertProfile(ctx, "user-1", models.UserProfileInput{Email: ptr("ana@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "member", profile.Role)

	profile, err = svc.UpsertProfile(ctx, "user-1", models.UserProfileInput{Role: ptr("admin"), FullName: ptr("Ana K")})
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.Role)
	assert.Equal(t, "ana@example.com", profile.Email)

	_, err = svc.GetProfile(ctx, "user-2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.UpsertProfile(ctx, "user-1", models.UserProfileInput{Role: ptr("owner")})
	assert.ErrorAs(t, err, &verr)
}
