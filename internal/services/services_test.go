package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/store"
	"marketing-ops/migrations"
	"marketing-ops/models"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = migrations.Apply(context.Background(), s.DB())
	require.NoError(t, err)
	return s
}

func createEvent(t *testing.T, s *store.Store, title, date string, created time.Time) string {
	t.Helper()
	rec := models.EventInput{Title: ptr(title), Date: ptr(date)}.Record(true, created)
	_, err := s.Insert(context.Background(), "events", rec, false)
	require.NoError(t, err)
	return rec["id"].(string)
}

// recorder is a notification sink that keeps what it receives.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) Notify(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func newRecorder() (*recorder, *notify.Multi) {
	rec := &recorder{}
	return rec, notify.NewMulti(time.Second, rec)
}
