package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields tell
// an unset key apart from a zero value.
type FileConfig struct {
	Profile *string       `toml:"profile"`
	DB      *string       `toml:"db"`
	Catalog *string       `toml:"catalog"`
	User    UserSection   `toml:"user"`
	Log     LogSection    `toml:"log"`
	Server  ServerSection `toml:"server"`
	Sync    SyncSection   `toml:"sync"`
	LLM     LLMSection    `toml:"llm"`
}

// UserSection identifies the signed-in user.
type UserSection struct {
	ID    *string `toml:"id"`
	Name  *string `toml:"name"`
	Email *string `toml:"email"`
}

// LogSection maps logging settings.
type LogSection struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// ServerSection maps the HTTP API settings.
type ServerSection struct {
	Addr *string `toml:"addr"`
}

// SyncSection maps cross-process sync settings.
type SyncSection struct {
	PollInterval *string `toml:"poll-interval"`
}

// LLMSection maps provider selection and per-provider settings. API keys
// are better kept in the environment but are accepted here too.
type LLMSection struct {
	Provider   *string         `toml:"provider"`
	Fallback   *string         `toml:"fallback"`
	Timeout    *string         `toml:"timeout"`
	Anthropic  ProviderSection `toml:"anthropic"`
	OpenAI     ProviderSection `toml:"openai"`
	Gemini     ProviderSection `toml:"gemini"`
	OpenRouter ProviderSection `toml:"openrouter"`
}

// ProviderSection maps one provider's settings.
type ProviderSection struct {
	APIKey  *string `toml:"api-key"`
	Model   *string `toml:"model"`
	BaseURL *string `toml:"base-url"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an
// error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
