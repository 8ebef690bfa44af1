package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var ErrMissingAPIKey = errors.New("llm api key is empty")

// Request is a single-turn text generation request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	Text       string `json:"text"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// Provider generates text with a hosted model.
type Provider interface {
	Name() string
	DefaultModel() string
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.StatusCode, e.Message)
}
