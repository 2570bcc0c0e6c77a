// ABOUTME: Centralized configuration for the jarvis assistant
// ABOUTME: Layers defaults, an optional YAML file, .env, and environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/harper/jarvis/internal/storage"
	"github.com/harper/jarvis/internal/storage/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config keys, also the YAML field names. Environment variables are the
// upper-cased key with a JARVIS_ prefix, e.g. JARVIS_WAKE_WORD.
const (
	KeyDBPath             = "db_path"
	KeyWakeWord           = "wake_word"
	KeyRequireWake        = "require_wake"
	KeySearchTimeout      = "search_timeout"
	KeySearchHistorySize  = "search_history_size"
	KeyMaxResults         = "max_results"
	KeyProviderLatency    = "provider_latency"
	KeyTaskHistorySize    = "task_history_size"
	KeyTaskDelay          = "task_delay"
	KeyConversationCache  = "conversation_cache_size"
	KeyRoutinesFile       = "routines_file"
	KeySignatureMatcher   = "signature_matcher"
	KeySignatureThreshold = "signature_threshold"
	KeyLogLevel           = "log_level"
	KeyMetricsAddr        = "metrics_addr"
	KeyCharmEnabled       = "charm_enabled"
	KeyCharmHost          = "charm_host"
	KeyCharmDB            = "charm_db"
	KeyAutoSync           = "auto_sync"
	KeyOpenAIKey          = "openai_api_key"
	KeyChatModel          = "chat_model"
	KeyOpenAITimeout      = "openai_timeout"
	KeyMaxRetries         = "max_retries"
	KeyRetryDelay         = "retry_delay"
)

// Config holds all configuration for the assistant
type Config struct {
	DBPath string

	// Session settings
	WakeWord    string
	RequireWake bool

	// Query settings
	SearchTimeout     time.Duration
	SearchHistorySize int
	MaxResults        int
	ProviderLatency   time.Duration

	// Task settings
	TaskHistorySize int
	TaskDelay       time.Duration
	RoutinesFile    string

	// Store settings
	ConversationCacheSize int
	SignatureMatcher      string
	SignatureThreshold    float64

	// Observability
	LogLevel    string
	MetricsAddr string

	// Charm settings
	CharmEnabled bool
	CharmHost    string
	CharmDBName  string
	AutoSync     bool

	// OpenAI settings
	OpenAIKey     string
	ChatModel     string
	OpenAITimeout time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
}

// legacyEnv are unprefixed variables honored for compatibility with other
// charm and OpenAI tooling
var legacyEnv = map[string]string{
	KeyOpenAIKey: "OPENAI_API_KEY",
	KeyCharmHost: "CHARM_HOST",
	KeyCharmDB:   "CHARM_DB",
	KeyAutoSync:  "CHARM_AUTO_SYNC",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, sqlite.DefaultDBPath())
	v.SetDefault(KeyWakeWord, "jarvis")
	v.SetDefault(KeyRequireWake, false)
	v.SetDefault(KeySearchTimeout, 10*time.Second)
	v.SetDefault(KeySearchHistorySize, 100)
	v.SetDefault(KeyMaxResults, 5)
	v.SetDefault(KeyProviderLatency, time.Duration(0))
	v.SetDefault(KeyTaskHistorySize, 100)
	v.SetDefault(KeyTaskDelay, time.Second)
	v.SetDefault(KeyConversationCache, storage.DefaultConversationWindow)
	v.SetDefault(KeyRoutinesFile, "")
	v.SetDefault(KeySignatureMatcher, "exact")
	v.SetDefault(KeySignatureThreshold, storage.DefaultCosineThreshold)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyCharmEnabled, false)
	v.SetDefault(KeyCharmHost, "cloud.charm.sh")
	v.SetDefault(KeyCharmDB, "jarvis")
	v.SetDefault(KeyAutoSync, true)
	v.SetDefault(KeyOpenAIKey, "")
	v.SetDefault(KeyChatModel, "gpt-4o-mini")
	v.SetDefault(KeyOpenAITimeout, 30*time.Second)
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyRetryDelay, 2*time.Second)
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/jarvis/config.yaml
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, "jarvis", "config.yaml")
}

// Load resolves configuration. An explicit configPath must exist; the
// default path is read only when present. A .env file in the working
// directory is loaded first and never overrides the real environment.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("JARVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "JARVIS_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	cfg := fromViper(v)
	return cfg, cfg.Validate()
}

// Defaults returns the built-in configuration, ignoring files and environment
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBPath:                v.GetString(KeyDBPath),
		WakeWord:              v.GetString(KeyWakeWord),
		RequireWake:           v.GetBool(KeyRequireWake),
		SearchTimeout:         v.GetDuration(KeySearchTimeout),
		SearchHistorySize:     v.GetInt(KeySearchHistorySize),
		MaxResults:            v.GetInt(KeyMaxResults),
		ProviderLatency:       v.GetDuration(KeyProviderLatency),
		TaskHistorySize:       v.GetInt(KeyTaskHistorySize),
		TaskDelay:             v.GetDuration(KeyTaskDelay),
		RoutinesFile:          v.GetString(KeyRoutinesFile),
		ConversationCacheSize: v.GetInt(KeyConversationCache),
		SignatureMatcher:      v.GetString(KeySignatureMatcher),
		SignatureThreshold:    v.GetFloat64(KeySignatureThreshold),
		LogLevel:              v.GetString(KeyLogLevel),
		MetricsAddr:           v.GetString(KeyMetricsAddr),
		CharmEnabled:          v.GetBool(KeyCharmEnabled),
		CharmHost:             v.GetString(KeyCharmHost),
		CharmDBName:           v.GetString(KeyCharmDB),
		AutoSync:              v.GetBool(KeyAutoSync),
		OpenAIKey:             v.GetString(KeyOpenAIKey),
		ChatModel:             v.GetString(KeyChatModel),
		OpenAITimeout:         v.GetDuration(KeyOpenAITimeout),
		MaxRetries:            v.GetInt(KeyMaxRetries),
		RetryDelay:            v.GetDuration(KeyRetryDelay),
	}
}

func readConfigFile(v *viper.Viper, configPath string) error {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WakeWord) == "" {
		return errors.New("wake_word must not be empty")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search_timeout must be positive, got %v", c.SearchTimeout)
	}
	if c.SearchHistorySize <= 0 || c.TaskHistorySize <= 0 || c.ConversationCacheSize <= 0 {
		return errors.New("history and cache sizes must be positive")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must not be negative, got %d", c.MaxResults)
	}
	if c.TaskDelay < 0 || c.ProviderLatency < 0 {
		return errors.New("task_delay and provider_latency must not be negative")
	}
	if c.SignatureMatcher != "exact" && c.SignatureMatcher != "cosine" {
		return fmt.Errorf("signature_matcher must be exact or cosine, got %q", c.SignatureMatcher)
	}
	if c.SignatureThreshold < 0 || c.SignatureThreshold > 1 {
		return fmt.Errorf("signature_threshold must be 0-1, got %f", c.SignatureThreshold)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be 0-10, got %d", c.MaxRetries)
	}
	if c.OpenAITimeout <= 0 {
		return fmt.Errorf("openai_timeout must be positive, got %v", c.OpenAITimeout)
	}
	return nil
}

// LLMEnabled reports whether an OpenAI key is configured
func (c *Config) LLMEnabled() bool {
	return c.OpenAIKey != ""
}
