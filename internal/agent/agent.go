package agent

import (
	"context"
	"fmt"

	"github.com/FeelPulse/flightpulse/internal/config"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

// CompletionRequest is a single-turn completion: one system instruction, one user prompt
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer is the contract every text-completion provider implements
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*types.AgentResponse, error)
	Name() string
}

// NewFromConfig builds the configured provider, wrapped in a FailoverAgent
// when a usable fallback provider is configured.
func NewFromConfig(ctx context.Context, cfg *config.AgentConfig) (Completer, error) {
	primary, err := newProvider(ctx, cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.FallbackProvider == "" {
		return primary, nil
	}

	key := cfg.FallbackAPIKey
	if key == "" && cfg.FallbackProvider == cfg.Provider {
		key = cfg.APIKey
	}
	if key == "" {
		log.Warn("fallback provider %s has no key, running without fallback", cfg.FallbackProvider)
		return primary, nil
	}

	fallback, err := newProvider(ctx, cfg.FallbackProvider, key, cfg.FallbackModel, "")
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return NewFailoverAgent(primary, fallback), nil
}

func newProvider(ctx context.Context, provider, apiKey, model, baseURL string) (Completer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key not configured", provider)
	}

	switch provider {
	case "openai", "":
		return NewOpenAIClient(apiKey, model, baseURL), nil
	case "anthropic":
		return NewAnthropicClient(apiKey, model), nil
	case "gemini":
		return NewGeminiClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
