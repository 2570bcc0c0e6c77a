// ABOUTME: Charm KV client wrapper that mirrors preferences to the cloud
// ABOUTME: Keys are namespaced by entity; writes sync when AutoSync is on
package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harper/jarvis/internal/models"
	"github.com/rs/zerolog/log"
)

// PreferencePrefix namespaces mirrored preferences
const PreferencePrefix = "preference:"

// Config holds charm client configuration
type Config struct {
	Host     string
	DBName   string
	AutoSync bool
}

// KV is the subset of the charm key-value store the client uses
type KV interface {
	Set(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	Close() error
}

// Client wraps charm KV for preference mirroring
type Client struct {
	kv     KV
	config *Config
	mu     sync.Mutex
}

// NewClient opens the named charm KV database on the configured host
func NewClient(cfg *Config) (*Client, error) {
	// charm reads CHARM_HOST when opening KV
	if cfg.Host != "" {
		os.Setenv("CHARM_HOST", cfg.Host)
	}

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := NewClientWithKV(db, cfg)

	// Pull remote data on startup
	if cfg.AutoSync {
		if err := db.Sync(); err != nil {
			log.Warn().Err(err).Str("host", cfg.Host).Msg("initial charm sync failed")
		}
	}
	return c, nil
}

// NewClientWithKV wraps an already-open store
func NewClientWithKV(store KV, cfg *Config) *Client {
	return &Client{kv: store, config: cfg}
}

// Close closes the KV database
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		err := c.kv.Close()
		c.kv = nil
		return err
	}
	return nil
}

func (c *Client) open() (KV, error) {
	if c.kv == nil {
		return nil, fmt.Errorf("charm client is closed")
	}
	return c.kv, nil
}

// syncIfEnabled syncs to cloud after writes. Sync failures leave the local
// copy intact and are retried on the next write.
func (c *Client) syncIfEnabled(db KV) {
	if c.config.AutoSync {
		if err := db.Sync(); err != nil {
			log.Warn().Err(err).Msg("charm sync failed")
		}
	}
}

// Set stores a value with the given key
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return err
	}
	if err := db.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	c.syncIfEnabled(db)
	return nil
}

// Get retrieves a value by key
func (c *Client) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return nil, err
	}
	return db.Get([]byte(key))
}

// Delete removes a key
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return err
	}
	if err := db.Delete([]byte(key)); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	c.syncIfEnabled(db)
	return nil
}

// SetJSON marshals and stores a value as JSON
func (c *Client) SetJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.Set(key, data)
}

// GetJSON retrieves and unmarshals a JSON value
func (c *Client) GetJSON(key string, dest any) error {
	data, err := c.Get(key)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("key not found: %s", key)
	}
	return json.Unmarshal(data, dest)
}

// ListKeys returns all keys with the given prefix, sorted
func (c *Client) ListKeys(prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return nil, err
	}
	keys, err := db.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var result []string
	for _, key := range keys {
		if k := string(key); strings.HasPrefix(k, prefix) {
			result = append(result, k)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Sync manually triggers a sync with the cloud
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return err
	}
	return db.Sync()
}

// Reset wipes all local data (nuclear option)
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.open()
	if err != nil {
		return err
	}
	return db.Reset()
}

// Host returns the configured charm host
func (c *Client) Host() string {
	return c.config.Host
}

// AutoSync reports whether writes sync immediately
func (c *Client) AutoSync() bool {
	return c.config.AutoSync
}

// ID returns the charm user ID
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// PreferenceKey generates the mirror key for a preference
func PreferenceKey(category, key string) string {
	return PreferencePrefix + category + ":" + key
}

// MirrorPreference copies one preference to charm. It satisfies the
// store's Mirror interface.
func (c *Client) MirrorPreference(p models.Preference) error {
	return c.SetJSON(PreferenceKey(p.Category, p.Key), p)
}

// PushPreferences mirrors every given preference and returns how many were written
func (c *Client) PushPreferences(prefs []models.Preference) (int, error) {
	for i, p := range prefs {
		if err := c.MirrorPreference(p); err != nil {
			return i, err
		}
	}
	return len(prefs), nil
}

// Preferences returns every mirrored preference sorted by category, then key
func (c *Client) Preferences() ([]models.Preference, error) {
	keys, err := c.ListKeys(PreferencePrefix)
	if err != nil {
		return nil, err
	}

	prefs := make([]models.Preference, 0, len(keys))
	for _, key := range keys {
		var p models.Preference
		if err := c.GetJSON(key, &p); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}
