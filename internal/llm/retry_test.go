package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var okBody = json.RawMessage(`{"ok":true}`)

func TestRetry_CallCounts(t *testing.T) {
	down := func() MockResponse { return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}} }
	invalid := func() MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	}

	tests := []struct {
		name      string
		responses []MockResponse
		wantCalls int
		wantErr   bool
	}{
		{"first attempt", []MockResponse{{Content: okBody}}, 1, false},
		{"outage then success", []MockResponse{down(), {Content: okBody}}, 2, false},
		{"rate limit honours retry-after", []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
			{Content: okBody},
		}, 2, false},
		{"every attempt fails", []MockResponse{down(), down(), down(), {Content: okBody}}, 3, true},
		{"invalid response retried once", []MockResponse{invalid(), invalid(), {Content: okBody}}, 2, true},
		{"truncation not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, {Content: okBody}}, 1, true},
		{"rejected key not retried", []MockResponse{
			{Err: &ErrAuth{Provider: "anthropic", Err: errors.New("401")}},
			{Content: okBody},
		}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, retryConfig(), nil).Generate(context.Background(), Request{})
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(resp.Content) != string(okBody) {
				t.Fatalf("content = %s", resp.Content)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: okBody},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, retryConfig(), nil).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: okBody})
	if _, err := WithRetry(mock, RetryConfig{}, nil).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_SlowAttemptRetriedUnderTimeout(t *testing.T) {
	mock := NewNamedMockProvider("slow",
		MockResponse{Content: okBody, Delay: time.Second},
		MockResponse{Content: okBody},
	)
	p := WithRetry(WithTimeout(mock, 10*time.Millisecond), retryConfig(), nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "slow" {
		t.Fatalf("model = %q", resp.Model)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("calls = %d, want 2", mock.CallCount())
	}
}

func TestTimeout_ReportsUnavailable(t *testing.T) {
	mock := NewNamedMockProvider("slow", MockResponse{Content: okBody, Delay: time.Second})
	_, err := WithTimeout(mock, 5*time.Millisecond).Generate(context.Background(), Request{})

	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("attempt deadline should not look like caller cancellation")
	}
}

func TestTimeout_CallerCancellationPassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: okBody, Delay: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(mock, time.Minute).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTimeout_NonPositiveIsNoop(t *testing.T) {
	mock := NewMockProvider()
	if p := WithTimeout(mock, 0); p != Provider(mock) {
		t.Fatalf("expected unwrapped provider, got %T", p)
	}
}

func TestDecorators_DelegateIdentity(t *testing.T) {
	mock := NewNamedMockProvider("stub")
	p := WithRetry(WithLogging(WithTimeout(mock, time.Second), nil, nil), retryConfig(), nil)
	if p.Name() != "stub" || p.ModelID() != "stub" {
		t.Fatalf("name/model = %q/%q", p.Name(), p.ModelID())
	}
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("upstream")
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{429, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{401, func(err error) bool { var e *ErrAuth; return errors.As(err, &e) && e.Provider == "gemini" }},
		{403, func(err error) bool { var e *ErrAuth; return errors.As(err, &e) }},
		{503, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{400, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		err := classifyStatus("gemini", tt.status, base)
		if !tt.check(err) {
			t.Errorf("status %d mapped to %T", tt.status, err)
		}
		if !errors.Is(err, base) {
			t.Errorf("status %d lost the cause", tt.status)
		}
		if !IsUpstream(err) {
			t.Errorf("status %d not reported as upstream", tt.status)
		}
	}
	if IsUpstream(errors.New("local")) {
		t.Error("plain error reported as upstream")
	}
}
