package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketing-ops/config"
	"marketing-ops/internal/services"
	"marketing-ops/internal/services/llm"
	"marketing-ops/internal/services/notify"
	"marketing-ops/internal/services/social"
	"marketing-ops/internal/store"
	"marketing-ops/migrations"
	"marketing-ops/models"
	"marketing-ops/security"

	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) Generate(ctx context.Context, req services.GenerateRequest) (*services.GenerateResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.GenerateResult)
	return result, args.Error(1)
}

func (m *MockContentGenerator) History(ctx context.Context, channel string, limit int) ([]models.HistoricalContent, error) {
	args := m.Called(ctx, channel, limit)
	items, _ := args.Get(0).([]models.HistoricalContent)
	return items, args.Error(1)
}

func (m *MockContentGenerator) SaveHistory(ctx context.Context, in models.HistoricalContentInput) (map[string]any, []string, error) {
	args := m.Called(ctx, in)
	row, _ := args.Get(0).(map[string]any)
	dropped, _ := args.Get(1).([]string)
	return row, dropped, args.Error(2)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, req services.SendEmailRequest) (*services.SendEmailReport, error) {
	args := m.Called(ctx, req)
	report, _ := args.Get(0).(*services.SendEmailReport)
	return report, args.Error(1)
}

type MockSocialReader struct {
	mock.Mock
}

func (m *MockSocialReader) Posts(ctx context.Context, limit int) ([]social.Post, error) {
	args := m.Called(ctx, limit)
	posts, _ := args.Get(0).([]social.Post)
	return posts, args.Error(1)
}

func (m *MockSocialReader) Import(ctx context.Context, limit int) (*services.SocialImportReport, error) {
	args := m.Called(ctx, limit)
	report, _ := args.Get(0).(*services.SocialImportReport)
	return report, args.Error(1)
}

type testServer struct {
	e       *echo.Echo
	store   *store.Store
	content *MockContentGenerator
	email   *MockEmailSender
	social  *MockSocialReader
}

func newTestServer(t *testing.T, opts RouteOptions) *testServer {
	t.Helper()

	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	_, err = migrations.Apply(context.Background(), s.DB())
	require.NoError(t, err)

	notifier := notify.NewMulti(0)
	cfg := config.Default()

	ts := &testServer{
		store:   s,
		content: &MockContentGenerator{},
		email:   &MockEmailSender{},
		social:  &MockSocialReader{},
	}
	h := &Handlers{
		Events:  NewEventHandler(services.NewEventService(s), services.NewCalendarService(s, "Test")),
		Tasks:   NewTaskHandler(services.NewTaskService(s, notifier)),
		Team:    NewTeamHandler(services.NewTeamService(s)),
		Content: NewContentHandler(ts.content, services.NewFetchService(nil), ts.email, ts.social),
		Admin: NewAdminHandler(cfg, s, nil, services.NewDedupeService(s, notifier),
			services.NewSeedService(s), notifier.Sinks()),
	}
	ts.e = NewServer(h, opts)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/email/send", ""},
		{http.MethodPut, "/api/email/send", `{"recipients":["a@example.com"],"subject":"s","html":"h"}`},
		{http.MethodDelete, "/api/events", `{"title":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec, body := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "Method Not Allowed", body["error"])
		})
	}
	ts.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestEmail_PartialFailureSummary(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	report := &services.SendEmailReport{
		BatchID:      "ABC123",
		EmailsSent:   3,
		EmailsFailed: 2,
		Results: []services.EmailResult{
			{Recipient: "a@example.com", Success: true},
			{Recipient: "b@example.com", Error: "mailbox unavailable"},
			{Recipient: "c@example.com", Success: true},
			{Recipient: "d@example.com", Error: "mailbox unavailable"},
			{Recipient: "e@example.com", Success: true},
		},
	}
	ts.email.On("Send", mock.Anything, mock.MatchedBy(func(req services.SendEmailRequest) bool {
		return len(req.Recipients) == 5 && req.Subject == "June"
	})).Return(report, nil).Once()

	rec, body := ts.do(t, http.MethodPost, "/api/email/send",
		`{"recipients":["a@example.com","b@example.com","c@example.com","d@example.com","e@example.com"],"subject":"June","html":"<p>hi</p>"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["emailsSent"])
	assert.Equal(t, float64(2), body["emailsFailed"])
	assert.Equal(t, "3 succeeded, 2 failed", body["message"])
	assert.Len(t, body["results"], 5)
	ts.email.AssertExpectations(t)
}

func TestEmail_Validation(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	rec, body := ts.do(t, http.MethodPost, "/api/email/send", `{"recipients":[],"subject":"s","html":"h"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "at least one recipient is required", body["error"])

	rec, _ = ts.do(t, http.MethodPost, "/api/email/send", `{"recipients":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestEvents_Lifecycle(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	rec, body := ts.do(t, http.MethodPost, "/api/events", `{"date":"2025-06-13"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", body["error"])

	rec, body = ts.do(t, http.MethodPost, "/api/events", `{"title":"Jazz Night","date":"2025-06-13","time":"20:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	event := body["event"].(map[string]any)
	id := event["id"].(string)

	rec, body = ts.do(t, http.MethodGet, "/api/events?from=2025-06-01&to=2025-06-30", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	rec, body = ts.do(t, http.MethodPost, "/api/events/"+id+"/tasks/generate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(len(services.DefaultChecklist)), body["created"])

	rec, _ = ts.do(t, http.MethodGet, "/api/events/calendar.ics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "UID:"+id)

	rec, _ = ts.do(t, http.MethodDelete, "/api/events/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = ts.do(t, http.MethodGet, "/api/events/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Record not found", body["error"])
}

func TestGetEvent_Context(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})
	event, _, err := services.NewEventService(ts.store).Create(context.Background(), models.EventInput{
		Title: ptr("Quiz"),
		Date:  ptr("2025-07-01"),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := ts.e.NewContext(req, rec)
	c.SetPathParams(echo.PathParams{{Name: "id", Value: event.ID}})

	handler := NewEventHandler(services.NewEventService(ts.store), nil)
	require.NoError(t, handler.GetEvent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Quiz", body["event"].(map[string]any)["title"])
}

func TestContent_Generate(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	rec, body := ts.do(t, http.MethodPost, "/api/content/generate", `{"event_id":"e1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "channel is required", body["error"])

	ts.content.On("Generate", mock.Anything, mock.MatchedBy(func(req services.GenerateRequest) bool {
		return req.EventID == "e1" && req.Channel == "instagram"
	})).Return(&services.GenerateResult{
		Content:       "See you there",
		Channel:       "instagram",
		Provider:      "anthropic",
		Model:         "claude-sonnet-4-5",
		Usage:         llm.Usage{InputTokens: 10, OutputTokens: 5},
		EstimatedCost: decimal.RequireFromString("0.000105"),
		CostKnown:     true,
	}, nil).Once()

	rec, body = ts.do(t, http.MethodPost, "/api/content/generate", `{"event_id":"e1","channel":"instagram"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "See you there", body["content"])
	assert.Equal(t, "0.000105", body["estimated_cost"])

	ts.content.On("Generate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("LLM provider %w", services.ErrNotConfigured)).Once()
	rec, body = ts.do(t, http.MethodPost, "/api/content/generate", `{"event_id":"e1","channel":"press"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "LLM provider not configured", body["error"])

	ts.content.On("Generate", mock.Anything, mock.Anything).
		Return(nil, &llm.APIError{Provider: "anthropic", StatusCode: 529, Message: "overloaded"}).Once()
	rec, body = ts.do(t, http.MethodPost, "/api/content/generate", `{"event_id":"e1","channel":"press"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate content", body["error"])
	assert.Contains(t, body["details"], "overloaded")
}

func TestSocial_LimitValidation(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	rec, _ := ts.do(t, http.MethodGet, "/api/social/posts?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.social.On("Posts", mock.Anything, social.DefaultLimit).Return([]social.Post{{ID: "p1"}}, nil).Once()
	rec, body := ts.do(t, http.MethodGet, "/api/social/posts", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	ts.social.AssertExpectations(t)
}

func TestAdmin_TokenAndDedupe(t *testing.T) {
	hash, err := security.HashAdminToken("s3cret")
	require.NoError(t, err)
	ts := newTestServer(t, RouteOptions{AdminTokenHash: hash})

	rec, _ := ts.do(t, http.MethodPost, "/api/admin/duplicates/remove", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/admin/duplicates/remove", "", security.AdminTokenHeader, "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	events := services.NewEventService(ts.store)
	for i := 0; i < 2; i++ {
		_, _, err := events.Create(context.Background(), models.EventInput{Title: ptr("Jazz Night"), Date: ptr("2025-06-13")})
		require.NoError(t, err)
	}

	rec, body := ts.do(t, http.MethodGet, "/api/admin/duplicates", "", security.AdminTokenHeader, "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["dry_run"])
	assert.Len(t, body["groups"], 1)

	rec, body = ts.do(t, http.MethodPost, "/api/admin/duplicates/remove", "", security.AdminTokenHeader, "s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total_deleted"])
}

func TestAdmin_Seed(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	seed := bytes.NewBufferString("team:\n  - name: Ana\n    channels: [instagram]\n")
	rec, body := ts.do(t, http.MethodPost, "/api/admin/seed", seed.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	tables := body["tables"].(map[string]any)
	assert.Equal(t, float64(1), tables["team_members"].(map[string]any)["inserted"])

	rec, _ = ts.do(t, http.MethodPost, "/api/admin/seed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDebugRoutes(t *testing.T) {
	dev := newTestServer(t, RouteOptions{})
	rec, body := dev.do(t, http.MethodGet, "/api/debug/db", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["connected"])
	tables := body["tables"].(map[string]any)
	assert.Equal(t, float64(0), tables["events"])

	rec, body = dev.do(t, http.MethodGet, "/api/debug/config", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["social"])

	prod := newTestServer(t, RouteOptions{Production: true})
	rec, _ = prod.do(t, http.MethodGet, "/api/debug/config", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})

	rec, body := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.NotContains(t, body, "redis")
}

func TestHealth_DatabaseDown(t *testing.T) {
	ts := newTestServer(t, RouteOptions{})
	require.NoError(t, ts.store.Close())

	rec, body := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Service degraded", body["error"])
	assert.Contains(t, body["details"], "database health check failed")
	assert.NotContains(t, body, "success")
}

func ptr[T any](v T) *T { return &v }
