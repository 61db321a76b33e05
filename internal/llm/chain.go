package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ChainProvider tries an ordered list of providers and returns the first
// success. Context cancellation stops the chain immediately; any other
// failure moves on to the next provider.
//
// When every provider fails the error is an *ErrProviderUnavailable wrapping
// each attempt's error, so callers see one error type regardless of which
// provider answered last. errors.As still reaches the individual causes.
type ChainProvider struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain builds a ChainProvider. At least one provider is required.
func NewChain(logger *slog.Logger, providers ...Provider) (*ChainProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("llm chain requires at least one provider")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChainProvider{providers: providers, logger: logger}, nil
}

func (c *ChainProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var errs []error
	for i, p := range c.providers {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		errs = append(errs, fmt.Errorf("%s/%s: %w", p.Name(), p.ModelID(), err))
		if i < len(c.providers)-1 {
			c.logger.Warn("llm provider failed, trying fallback",
				"provider", p.Name(),
				"model", p.ModelID(),
				"purpose", PurposeFrom(ctx),
				"error", err)
		}
	}
	return nil, &ErrProviderUnavailable{Err: errors.Join(errs...)}
}

// ModelID reports the primary provider's model.
func (c *ChainProvider) ModelID() string {
	return c.providers[0].ModelID()
}

// Name reports the primary provider's name.
func (c *ChainProvider) Name() string {
	return c.providers[0].Name()
}

// Len returns the number of providers in the chain.
func (c *ChainProvider) Len() int {
	return len(c.providers)
}
