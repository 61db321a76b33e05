package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets variables that would leak host settings into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SKILLPATH_PROFILE", "SKILLPATH_DB", "SKILLPATH_USER", "SKILLPATH_LOG_LEVEL",
		"SKILLPATH_LLM_PROVIDER", "SKILLPATH_LLM_FALLBACK", "SKILLPATH_POLL_INTERVAL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Profile, cfg.Profile)
	assert.Equal(t, time.Second, cfg.PollInterval)
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.RequireUser())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `
profile = "work"
db = "/tmp/x.db"

[user]
id = "alice"
name = "Alice"

[sync]
poll-interval = "250ms"

[llm]
provider = "mock"
fallback = "gemini"

[llm.gemini]
model = "gemini-2.0-flash"
`)
	t.Setenv("SKILLPATH_PROFILE", "home")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Profile)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "gemini", cfg.LLM.Fallback)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.Model)
	assert.NoError(t, cfg.RequireUser())
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, `colour = "blue"`)
	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoadBadDuration(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "[sync]\npoll-interval = \"soon\"\n")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoadDiscoversProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	cfg.PollInterval = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log format")
	assert.Contains(t, err.Error(), "poll interval")
}
