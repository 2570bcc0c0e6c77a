// ABOUTME: Tests for the configuration loader
// ABOUTME: Verifies defaults, file and environment layering, and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG and the unprefixed variables away from the host
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, env := range legacyEnv {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "jarvis", "jarvis.db"), cfg.DBPath)
	assert.Equal(t, "jarvis", cfg.WakeWord)
	assert.False(t, cfg.RequireWake)
	assert.Equal(t, 10*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 100, cfg.SearchHistorySize)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 100, cfg.TaskHistorySize)
	assert.Equal(t, time.Second, cfg.TaskDelay)
	assert.Equal(t, 50, cfg.ConversationCacheSize)
	assert.Equal(t, "exact", cfg.SignatureMatcher)
	assert.Equal(t, 0.6, cfg.SignatureThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.CharmEnabled)
	assert.Equal(t, "cloud.charm.sh", cfg.CharmHost)
	assert.Equal(t, "jarvis", cfg.CharmDBName)
	assert.True(t, cfg.AutoSync)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.False(t, cfg.LLMEnabled())
}

func TestDefaultsIgnoreEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JARVIS_WAKE_WORD", "friday")

	cfg := Defaults()
	assert.Equal(t, "jarvis", cfg.WakeWord)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("JARVIS_WAKE_WORD", "friday")
	t.Setenv("JARVIS_SEARCH_TIMEOUT", "3s")
	t.Setenv("JARVIS_MAX_RESULTS", "2")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("CHARM_AUTO_SYNC", "false")
	t.Setenv("CHARM_DB", "assistant")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "friday", cfg.WakeWord)
	assert.Equal(t, 3*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 2, cfg.MaxResults)
	assert.Equal(t, "test-key", cfg.OpenAIKey)
	assert.True(t, cfg.LLMEnabled())
	assert.False(t, cfg.AutoSync)
	assert.Equal(t, "assistant", cfg.CharmDBName)
}

func TestLoad_PrefixedBeatsLegacy(t *testing.T) {
	isolate(t)
	t.Setenv("CHARM_HOST", "legacy.example.com")
	t.Setenv("JARVIS_CHARM_HOST", "charm.example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "charm.example.com", cfg.CharmHost)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "jarvis.yaml")
	yaml := "wake_word: computer\nsignature_matcher: cosine\nsignature_threshold: 0.8\ntask_delay: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	// environment wins over the file
	t.Setenv("JARVIS_SIGNATURE_THRESHOLD", "0.9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "computer", cfg.WakeWord)
	assert.Equal(t, "cosine", cfg.SignatureMatcher)
	assert.Equal(t, 0.9, cfg.SignatureThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.TaskDelay)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", "jarvis", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("max_results: 7\n"), 0o644))

	assert.Equal(t, path, DefaultConfigPath())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxResults)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	isolate(t)
	t.Setenv("JARVIS_MAX_RETRIES", "20")

	_, err := Load("")
	assert.ErrorContains(t, err, "max_retries")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			WakeWord:              "jarvis",
			SearchTimeout:         time.Second,
			SearchHistorySize:     1,
			TaskHistorySize:       1,
			ConversationCacheSize: 1,
			SignatureMatcher:      "exact",
			SignatureThreshold:    0.5,
			LogLevel:              "debug",
			MaxRetries:            3,
			OpenAITimeout:         time.Second,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty wake word", func(c *Config) { c.WakeWord = " " }},
		{"zero timeout", func(c *Config) { c.SearchTimeout = 0 }},
		{"zero cache", func(c *Config) { c.ConversationCacheSize = 0 }},
		{"negative max results", func(c *Config) { c.MaxResults = -1 }},
		{"negative task delay", func(c *Config) { c.TaskDelay = -time.Second }},
		{"unknown matcher", func(c *Config) { c.SignatureMatcher = "fuzzy" }},
		{"threshold above one", func(c *Config) { c.SignatureThreshold = 1.5 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }},
		{"zero openai timeout", func(c *Config) { c.OpenAITimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
