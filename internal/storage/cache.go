// ABOUTME: In-memory view over preferences, known visitors, and recent conversation
// ABOUTME: Guarded by one RWMutex; only updated after a durable write succeeds
package storage

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/harper/jarvis/internal/models"
)

// DefaultConversationWindow is how many recent entries the cache keeps
const DefaultConversationWindow = 50

type cache struct {
	mu     sync.RWMutex
	prefs  map[string]map[string]json.RawMessage // category -> key -> encoded value
	known  map[int64]models.Visitor
	recent []models.ConversationEntry // newest first
	window int
}

func newCache(window int) *cache {
	if window <= 0 {
		window = DefaultConversationWindow
	}
	return &cache{
		prefs:  make(map[string]map[string]json.RawMessage),
		known:  make(map[int64]models.Visitor),
		window: window,
	}
}

func (c *cache) getPref(category, key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.prefs[category][key]
	return raw, ok
}

func (c *cache) putPref(category, key string, raw json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	section, ok := c.prefs[category]
	if !ok {
		section = make(map[string]json.RawMessage)
		c.prefs[category] = section
	}
	section[key] = raw
}

func (c *cache) putVisitor(v models.Visitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v.Known {
		c.known[v.ID] = v
	} else {
		delete(c.known, v.ID)
	}
}

func (c *cache) visitor(id int64) (models.Visitor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.known[id]
	return v, ok
}

func (c *cache) knownCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known)
}

// addEntry inserts in newest-first position and trims to the window
func (c *cache) addEntry(entry models.ConversationEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, _ := slices.BinarySearchFunc(c.recent, entry, func(existing, target models.ConversationEntry) int {
		if existing.Newer(target) {
			return -1
		}
		return 1
	})
	c.recent = slices.Insert(c.recent, i, entry)
	if len(c.recent) > c.window {
		c.recent = c.recent[:c.window]
	}
}

func (c *cache) recentEntries(limit int) []models.ConversationEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := len(c.recent)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(c.recent[:n])
}

// replace swaps in freshly loaded sections in one step
func (c *cache) replace(prefs map[string]map[string]json.RawMessage, known map[int64]models.Visitor, recent []models.ConversationEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs = prefs
	c.known = known
	if len(recent) > c.window {
		recent = recent[:c.window]
	}
	c.recent = recent
}
