package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiter_Allow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 2)
	ctx := context.Background()

	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(1)
	mock.ExpectExpire("ratelimit:10.0.0.1", time.Minute).SetVal(true)
	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(2)
	mock.ExpectIncr("ratelimit:10.0.0.1").SetVal(3)

	for _, want := range []bool{true, true, false} {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, allowed)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 1)

	mock.ExpectIncr("ratelimit:192.0.2.1").SetErr(errors.New("redis down"))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/content/generate", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := limiter.Middleware()(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_Rejects(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 1)

	mock.ExpectIncr("ratelimit:192.0.2.1").SetVal(5)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/email/send", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := limiter.Middleware()(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiter_DisabledWithoutRedis(t *testing.T) {
	limiter := NewRateLimiter(nil, 10)

	allowed, err := limiter.Allow(context.Background(), "anyone")
	assert.NoError(t, err)
	assert.True(t, allowed)
}

func TestRequireAdminToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		hash   string
		token  string
		status int
	}{
		{"no hash configured", "", "", http.StatusOK},
		{"missing token", string(hash), "", http.StatusUnauthorized},
		{"wrong token", string(hash), "nope", http.StatusForbidden},
		{"valid token", string(hash), "s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/admin/duplicates/remove", nil)
			if tt.token != "" {
				req.Header.Set(AdminTokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireAdminToken(tt.hash)(okHandler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHashAdminToken(t *testing.T) {
	hash, err := HashAdminToken("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}
