package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/skillpath/internal/store"
)

func TestChain_PrimarySucceeds(t *testing.T) {
	primary := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"primary"}`)})
	fallback := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"fallback"}`)})

	c, err := NewChain(nil, primary, fallback)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	resp, err := c.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"from":"primary"}` {
		t.Fatalf("got %s", resp.Content)
	}
	if len(fallback.Calls) != 0 {
		t.Fatalf("fallback called %d times, want 0", len(fallback.Calls))
	}
}

func TestChain_FallsBackOnError(t *testing.T) {
	primary := NewMockProvider(MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}})
	fallback := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"fallback"}`)})

	c, _ := NewChain(nil, primary, fallback)
	resp, err := c.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"from":"fallback"}` {
		t.Fatalf("got %s", resp.Content)
	}
}

func TestChain_AllFailReturnsUnavailable(t *testing.T) {
	primary := NewMockProvider(MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}})
	fallback := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})

	c, _ := NewChain(nil, primary, fallback)
	_, err := c.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected wrapped ErrInvalidResponse, got %v", err)
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected wrapped ErrRateLimit, got %v", err)
	}
}

func TestChain_CancellationStops(t *testing.T) {
	primary := NewMockProvider(MockResponse{Err: context.Canceled})
	fallback := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})

	c, _ := NewChain(nil, primary, fallback)
	_, err := c.Generate(context.Background(), Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(fallback.Calls) != 0 {
		t.Fatal("fallback must not run after cancellation")
	}
}

func TestChain_RequiresProvider(t *testing.T) {
	if _, err := NewChain(nil); err == nil {
		t.Fatal("expected error for empty chain")
	}
}

func TestNewProvider_MockWithFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	c, ok := p.(*ChainProvider)
	if !ok {
		t.Fatalf("expected *ChainProvider, got %T", p)
	}
	if c.Len() != 1 {
		t.Fatalf("chain length = %d, want 1", c.Len())
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
}

func TestChain_ErrorNamesEachProvider(t *testing.T) {
	primary := NewNamedMockProvider("anthropic", MockResponse{Err: &ErrAuth{Provider: "anthropic", Err: errors.New("401")}})
	fallback := NewNamedMockProvider("gemini", MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})

	c, _ := NewChain(nil, primary, fallback)
	if c.Name() != "anthropic" {
		t.Fatalf("Name = %q", c.Name())
	}
	_, err := c.Generate(context.Background(), Request{})
	for _, want := range []string{"anthropic/anthropic", "gemini/gemini"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
	var auth *ErrAuth
	if !errors.As(err, &auth) {
		t.Fatalf("expected wrapped ErrAuth, got %v", err)
	}
}

type recordingRepo struct {
	store.EventRepo
	got []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.got = append(r.got, data)
	return nil
}

func TestLogging_RecordsProviderAndPurpose(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewNamedMockProvider("openrouter",
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithLogging(mock, repo, nil)
	ctx := WithPurpose(context.Background(), "skill-quiz")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.got) != 2 {
		t.Fatalf("recorded %d events, want 2", len(repo.got))
	}
	ok, failed := repo.got[0], repo.got[1]
	if ok.Provider != "openrouter" || ok.Purpose != "skill-quiz" || !ok.Success || ok.InputTokens != 12 {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if failed.Success || !strings.Contains(failed.ErrorMessage, "429") {
		t.Fatalf("unexpected failure event: %+v", failed)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithLogging(mock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
