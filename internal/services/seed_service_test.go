package services

import (
	"context"
	"testing"

	"marketing-ops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
events:
  - title: Jazz Night
    date: "2025-06-13"
    time: "20:00"
    metadata:
      genre: jazz
  - title: Quiz
    date: "2025-06-20"
  - date: "2025-06-21"
team:
  - name: Ana
    email: ana@example.com
    channels: [instagram, facebook]
  - name: Ben
    role: admin
history:
  - channel: instagram
    content: "Tonight! Doors at 8."
    likes: 41
`

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)
	assert.Len(t, seed.Events, 3)
	assert.Len(t, seed.Team, 2)
	assert.Equal(t, []string{"instagram", "facebook"}, seed.Team[0].Channels)
	assert.Equal(t, "jazz", seed.Events[0].Metadata["genre"])

	fromJSON, err := ParseSeed([]byte(`{"team":[{"name":"Cleo"}]}`))
	require.NoError(t, err)
	assert.Len(t, fromJSON.Team, 1)

	var verr *ValidationError
	_, err = ParseSeed([]byte(`{}`))
	assert.ErrorAs(t, err, &verr)
	_, err = ParseSeed([]byte("events: [unclosed"))
	assert.ErrorAs(t, err, &verr)
}

func TestSeedService_Seed(t *testing.T) {
	s := newTestStore(t)
	svc := NewSeedService(s)
	svc.now = fixedClock
	ctx := context.Background()

	seed, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)

	report, err := svc.Seed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Tables["events"].Inserted)
	assert.Equal(t, 1, report.Tables["events"].Skipped)
	assert.Equal(t, 2, report.Tables["team_members"].Inserted)
	assert.Equal(t, 1, report.Tables["historical_content"].Inserted)

	members, err := s.ListTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	history, err := s.ListHistory(ctx, models.ChannelInstagram, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 41, history[0].Likes)

	report, err = svc.Seed(ctx, &SeedData{Events: seed.Events})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Tables["events"].Inserted)
	assert.Equal(t, 3, report.Tables["events"].Skipped)
}
