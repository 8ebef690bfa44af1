package llm

import (
	"context"
	"fmt"
	"net/http"

	"marketing-ops/config"
)

// NewProvider builds the provider selected in config.
func NewProvider(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, httpClient)

	case ProviderGemini:
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}, httpClient)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// SupportedProviders returns the provider names NewProvider accepts.
func SupportedProviders() []string {
	return []string{ProviderAnthropic, ProviderGemini}
}
