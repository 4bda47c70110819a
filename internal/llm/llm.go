// Package llm talks to hosted text-generation models. Every backend takes a
// system instruction and a user message and returns the reply text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pbaille/focusflow/internal/config"
	"github.com/pbaille/focusflow/internal/domain"
)

// ErrNotConfigured means no credential is set for the selected provider.
var ErrNotConfigured = errors.New("llm backend not configured")

// New returns the backend selected by cfg. It returns ErrNotConfigured when
// the provider is "none" or its API key is empty; callers then run offline.
func New(ctx context.Context, cfg config.LLM) (domain.TextGenerator, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderNemotron, config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNotConfigured)
		}
		return NewChatClient(cfg.APIURL, cfg.APIKey, cfg.Model, client), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrNotConfigured)
		}
		return NewAnthropicClient(cfg.AnthropicKey, "", client), nil
	case config.ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
		}
		return NewGeminiClient(ctx, cfg.GeminiKey, "")
	default:
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrNotConfigured)
	}
}
