package llm

import "testing"

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
		model   string
	}{
		{
			name:  "vendor prefixed model passes through",
			cfg:   OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3.5-haiku"},
			model: "anthropic/claude-3.5-haiku",
		},
		{
			name:  "custom base url",
			cfg:   OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-exp", BaseURL: "https://gw.example/v1"},
			model: "google/gemini-2.0-flash-exp",
		},
		{
			name:    "missing key",
			cfg:     OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
			wantErr: true,
		},
		{
			name:    "missing model",
			cfg:     OpenRouterConfig{APIKey: "sk-or-test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.model)
			}
			if p.Name() != "openrouter" {
				t.Errorf("name = %q, want openrouter", p.Name())
			}
		})
	}
}
