package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketing-ops/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProvider_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Jazz tonight! "}, {"type": "text", "text": "Doors at 8."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 120, "output_tokens": 40}
		}`)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, srv.Client())
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &Request{
		System:      "You write venue copy.",
		Prompt:      "Announce jazz night",
		MaxTokens:   256,
		Temperature: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Equal(t, "You write venue copy.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)

	assert.Equal(t, "Jazz tonight! Doors at 8.", resp.Text)
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 40}, resp.Usage)
	assert.Equal(t, "end_turn", resp.StopReason)
}

func TestAnthropicProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "bad", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &Request{Prompt: "hi", MaxTokens: 10})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid x-api-key", apiErr.Message)
}

func TestGeminiProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Quiz night is back"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 6, "totalTokenCount": 36}
		}`)
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "key", BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), &Request{Prompt: "Announce quiz", MaxTokens: 100, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Quiz night is back", resp.Text)
	assert.Equal(t, Usage{InputTokens: 30, OutputTokens: 6}, resp.Usage)
	assert.Equal(t, "STOP", resp.StopReason)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), config.LLMConfig{Provider: "anthropic"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "openai", APIKey: "k"}, nil)
	assert.EqualError(t, err, "unsupported llm provider: openai")

	p, err := NewProvider(context.Background(), config.LLMConfig{Provider: "anthropic", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, p.Name())
	assert.Equal(t, "claude-sonnet-4-5", p.DefaultModel())
}

func TestEstimateCost(t *testing.T) {
	cost, ok := EstimateCost("claude-sonnet-4-5", Usage{InputTokens: 1000, OutputTokens: 500})
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("0.0105").Equal(cost), cost.String())

	cost, ok = EstimateCost("gemini-2.5-flash-lite", Usage{InputTokens: 1_000_000})
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("0.3").Equal(cost), cost.String())

	_, ok = EstimateCost("mystery-model", Usage{InputTokens: 10})
	assert.False(t, ok)
}
