package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/skillpath/internal/store"
)

// NewProvider creates a Provider from configuration.
// Each configured provider is wrapped with retry and logging middleware and
// the primary and optional fallback are combined into a ChainProvider.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	primary, err := newWrappedProvider(ctx, cfg.Provider, cfg, eventRepo, logger)
	if err != nil {
		return nil, err
	}
	providers := []Provider{primary}

	if cfg.Fallback != "" && cfg.Fallback != cfg.Provider {
		fallback, err := newWrappedProvider(ctx, cfg.Fallback, cfg, eventRepo, logger)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		providers = append(providers, fallback)
	}

	return NewChain(logger, providers...)
}

func newWrappedProvider(ctx context.Context, name string, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch name {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", name, err)
	}

	// caller → retry → logging → timeout → base, so every attempt is
	// bounded and recorded on its own.
	bounded := WithTimeout(base, cfg.Timeout)
	logged := WithLogging(bounded, eventRepo, logger)
	return WithRetry(logged, cfg.Retry, logger), nil
}
