// ABOUTME: Tests for the charm client against an in-memory KV
// ABOUTME: Covers key namespacing, auto-sync, mirroring, and closed clients
package charm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/jarvis/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	syncs   int
	syncErr error
	closed  bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[string(key)], nil
}

func (m *memKV) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memKV) Keys() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([][]byte, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, []byte(k))
	}
	return keys, nil
}

func (m *memKV) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return m.syncErr
}

func (m *memKV) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *memKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestPreferenceKey(t *testing.T) {
	assert.Equal(t, "preference:weather:units", PreferenceKey("weather", "units"))
}

func TestMirrorPreferenceRoundTrip(t *testing.T) {
	store := newMemKV()
	c := NewClientWithKV(store, &Config{AutoSync: true})

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, c.MirrorPreference(models.Preference{Key: "units", Category: "weather", Value: "metric", LastUpdated: at}))
	require.NoError(t, c.MirrorPreference(models.Preference{Key: "theme", Category: "general", Value: "dark", LastUpdated: at}))
	assert.Equal(t, 2, store.syncs)

	prefs, err := c.Preferences()
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "general", prefs[0].Category)
	assert.Equal(t, "units", prefs[1].Key)
	assert.Equal(t, "metric", prefs[1].Value)
	assert.True(t, at.Equal(prefs[1].LastUpdated))
}

func TestAutoSyncDisabled(t *testing.T) {
	store := newMemKV()
	c := NewClientWithKV(store, &Config{AutoSync: false})

	require.NoError(t, c.Set("preference:a:b", []byte(`{}`)))
	require.NoError(t, c.Delete("preference:a:b"))
	assert.Zero(t, store.syncs)

	require.NoError(t, c.Sync())
	assert.Equal(t, 1, store.syncs)
}

func TestSyncFailureDoesNotFailWrite(t *testing.T) {
	store := newMemKV()
	store.syncErr = errors.New("offline")
	c := NewClientWithKV(store, &Config{AutoSync: true})

	require.NoError(t, c.SetJSON("preference:x:y", map[string]string{"a": "b"}))
	assert.Error(t, c.Sync())
}

func TestPushPreferences(t *testing.T) {
	c := NewClientWithKV(newMemKV(), &Config{})

	n, err := c.PushPreferences([]models.Preference{
		{Key: "volume", Category: "audio", Value: 0.5},
		{Key: "city", Category: "weather", Value: "Oslo"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := c.ListKeys(PreferencePrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"preference:audio:volume", "preference:weather:city"}, keys)
}

func TestGetJSONMissingKey(t *testing.T) {
	c := NewClientWithKV(newMemKV(), &Config{})
	var dest map[string]any
	assert.ErrorContains(t, c.GetJSON("preference:none:none", &dest), "key not found")
}

func TestResetAndClose(t *testing.T) {
	store := newMemKV()
	c := NewClientWithKV(store, &Config{})
	require.NoError(t, c.Set("preference:a:b", []byte(`1`)))

	require.NoError(t, c.Reset())
	keys, err := c.ListKeys("")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, store.closed)
	assert.Error(t, c.Set("k", nil))
	_, err = c.Preferences()
	assert.Error(t, err)
}
