package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/logging"
)

// Config is the resolved configuration.
type Config struct {
	// Profile scopes the client cache. Separate profiles on one database
	// never see each other's progress.
	Profile string

	// DB is the SQLite path. Empty means the store's default location.
	DB string

	// Catalog is an optional role catalog file replacing the embedded one.
	Catalog string

	UserID      string
	DisplayName string
	Email       string

	LogLevel  string
	LogFormat string

	ServerAddr string

	PollInterval time.Duration

	LLM llm.Config
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Profile:      "default",
		LogLevel:     "info",
		LogFormat:    logging.FormatAuto,
		ServerAddr:   "127.0.0.1:8787",
		PollInterval: time.Second,
		LLM:          llm.DefaultConfig(),
	}
}

// Load resolves defaults, then the file at path, then the environment.
// When no LLM provider is named anywhere, the standard provider API key
// variables are checked.
func Load(path string) (Config, error) {
	cfg := Default()

	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyFile(fc); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if fc.LLM.Provider == nil && os.Getenv("SKILLPATH_LLM_PROVIDER") == "" {
		if discovered, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = discovered.Provider
			cfg.LLM.Anthropic.APIKey = firstNonEmpty(cfg.LLM.Anthropic.APIKey, discovered.Anthropic.APIKey)
			cfg.LLM.OpenAI.APIKey = firstNonEmpty(cfg.LLM.OpenAI.APIKey, discovered.OpenAI.APIKey)
			cfg.LLM.Gemini.APIKey = firstNonEmpty(cfg.LLM.Gemini.APIKey, discovered.Gemini.APIKey)
			cfg.LLM.OpenRouter.APIKey = firstNonEmpty(cfg.LLM.OpenRouter.APIKey, discovered.OpenRouter.APIKey)
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(fc FileConfig) error {
	setString(&c.Profile, fc.Profile)
	setString(&c.DB, fc.DB)
	setString(&c.Catalog, fc.Catalog)
	setString(&c.UserID, fc.User.ID)
	setString(&c.DisplayName, fc.User.Name)
	setString(&c.Email, fc.User.Email)
	setString(&c.LogLevel, fc.Log.Level)
	setString(&c.LogFormat, fc.Log.Format)
	setString(&c.ServerAddr, fc.Server.Addr)
	if err := setDuration(&c.PollInterval, fc.Sync.PollInterval, "sync.poll-interval"); err != nil {
		return err
	}

	setString(&c.LLM.Provider, fc.LLM.Provider)
	setString(&c.LLM.Fallback, fc.LLM.Fallback)
	if err := setDuration(&c.LLM.Timeout, fc.LLM.Timeout, "llm.timeout"); err != nil {
		return err
	}
	setString(&c.LLM.Anthropic.APIKey, fc.LLM.Anthropic.APIKey)
	setString(&c.LLM.Anthropic.Model, fc.LLM.Anthropic.Model)
	setString(&c.LLM.OpenAI.APIKey, fc.LLM.OpenAI.APIKey)
	setString(&c.LLM.OpenAI.Model, fc.LLM.OpenAI.Model)
	setString(&c.LLM.OpenAI.BaseURL, fc.LLM.OpenAI.BaseURL)
	setString(&c.LLM.Gemini.APIKey, fc.LLM.Gemini.APIKey)
	setString(&c.LLM.Gemini.Model, fc.LLM.Gemini.Model)
	setString(&c.LLM.OpenRouter.APIKey, fc.LLM.OpenRouter.APIKey)
	setString(&c.LLM.OpenRouter.Model, fc.LLM.OpenRouter.Model)
	setString(&c.LLM.OpenRouter.BaseURL, fc.LLM.OpenRouter.BaseURL)
	return nil
}

func (c *Config) applyEnv() error {
	envString(&c.Profile, "SKILLPATH_PROFILE")
	envString(&c.DB, "SKILLPATH_DB")
	envString(&c.Catalog, "SKILLPATH_CATALOG")
	envString(&c.UserID, "SKILLPATH_USER")
	envString(&c.DisplayName, "SKILLPATH_USER_NAME")
	envString(&c.Email, "SKILLPATH_USER_EMAIL")
	envString(&c.LogLevel, "SKILLPATH_LOG_LEVEL")
	envString(&c.LogFormat, "SKILLPATH_LOG_FORMAT")
	envString(&c.ServerAddr, "SKILLPATH_SERVER_ADDR")
	if v := os.Getenv("SKILLPATH_POLL_INTERVAL"); v != "" {
		if err := setDuration(&c.PollInterval, &v, "SKILLPATH_POLL_INTERVAL"); err != nil {
			return err
		}
	}
	c.LLM = llm.ApplyEnv(c.LLM)
	return nil
}

// Validate checks the settings every command needs. LLM settings are
// validated separately by the commands that call a provider.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Profile) == "" {
		errs = append(errs, "profile must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	switch c.LogFormat {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Sprintf("unknown log format %q", c.LogFormat))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, "poll interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RequireUser returns an error when no user id is configured.
func (c Config) RequireUser() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("no user configured: pass --user, set SKILLPATH_USER, or set user.id in %s", DefaultConfigPath())
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
