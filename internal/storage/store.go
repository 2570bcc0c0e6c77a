// ABOUTME: Cache-backed assistant store over the SQLite tables
// ABOUTME: Durable write first, cache second; per-entity writes serialized
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/harper/jarvis/internal/metrics"
	"github.com/harper/jarvis/internal/models"
	"github.com/harper/jarvis/internal/storage/sqlite"
	"github.com/rs/zerolog/log"
)

// Mirror receives committed preference writes, e.g. a cloud KV replica
type Mirror interface {
	MirrorPreference(pref models.Preference) error
}

// Options configures a Store
type Options struct {
	// Matcher decides visitor signature matches. Defaults to ExactMatcher.
	Matcher SignatureMatcher
	// ConversationWindow caps the cached recent conversation. Defaults to 50.
	ConversationWindow int
	// Mirror, if set, is sent every committed preference write.
	Mirror Mirror
}

// Store is the explicit, shareable assistant store
type Store struct {
	durable *sqlite.Storage
	cache   *cache
	locks   *keyedMutex
	matcher SignatureMatcher
	mirror  Mirror

	// gate is held shared by writers and exclusively by Rebuild
	gate sync.RWMutex
}

// Open opens the store at path and warms the cache
func Open(path string, opts Options) (*Store, error) {
	durable, err := sqlite.NewStorageWithPath(path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	return New(durable, opts)
}

// OpenInMemory opens a store over an in-memory database (for testing)
func OpenInMemory(opts Options) (*Store, error) {
	durable, err := sqlite.NewStorageInMemory()
	if err != nil {
		return nil, unavailable("open", err)
	}
	return New(durable, opts)
}

// New builds a store over already opened durable storage and loads the cache
func New(durable *sqlite.Storage, opts Options) (*Store, error) {
	matcher := opts.Matcher
	if matcher == nil {
		matcher = ExactMatcher{}
	}

	s := &Store{
		durable: durable,
		cache:   newCache(opts.ConversationWindow),
		locks:   newKeyedMutex(),
		matcher: matcher,
		mirror:  opts.Mirror,
	}

	if err := s.Rebuild(); err != nil {
		_ = durable.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.durable.Close()
}

// Durable exposes the SQLite tables, e.g. for export
func (s *Store) Durable() *sqlite.Storage {
	return s.durable
}

// SetMirror installs or clears the preference mirror
func (s *Store) SetMirror(m Mirror) {
	s.gate.Lock()
	defer s.gate.Unlock()
	s.mirror = m
}

// Rebuild discards the cache and reloads it from durable storage
func (s *Store) Rebuild() error {
	s.gate.Lock()
	defer s.gate.Unlock()

	prefs, err := s.durable.Preferences.ListByCategory("")
	if err != nil {
		return unavailable("rebuild preferences", err)
	}
	prefCache := make(map[string]map[string]json.RawMessage)
	for _, p := range prefs {
		raw, err := json.Marshal(p.Value)
		if err != nil {
			return fmt.Errorf("rebuild preference %s/%s: %w", p.Category, p.Key, err)
		}
		if prefCache[p.Category] == nil {
			prefCache[p.Category] = make(map[string]json.RawMessage)
		}
		prefCache[p.Category][p.Key] = raw
	}

	visitors, err := s.durable.Visitors.ListKnown()
	if err != nil {
		return unavailable("rebuild visitors", err)
	}
	known := make(map[int64]models.Visitor, len(visitors))
	for _, v := range visitors {
		known[v.ID] = v
	}

	recent, err := s.durable.Conversations.History(s.cache.window, nil)
	if err != nil {
		return unavailable("rebuild conversations", err)
	}

	s.cache.replace(prefCache, known, recent)
	return nil
}

// SetPreference upserts a preference. The value must be JSON-serializable.
func (s *Store) SetPreference(key, category string, value any) error {
	if category == "" {
		category = models.DefaultCategory
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("set preference %s/%s: %w", category, key, err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("set preference %s/%s: %w", category, key, err)
	}

	pref, mirror, err := s.writePreference(key, category, normalized)
	if err != nil {
		return err
	}

	// no locks held here: the mirror may sync over the network
	if mirror != nil {
		if err := mirror.MirrorPreference(pref); err != nil {
			log.Warn().Err(err).Str("category", category).Str("key", key).Msg("preference mirror failed")
		}
	}
	return nil
}

// writePreference commits a preference and updates the cache under the
// per-key lock. It returns the stored preference and the mirror to notify.
func (s *Store) writePreference(key, category string, value any) (models.Preference, Mirror, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(prefLockKey(category, key))
	defer unlock()

	pref := models.Preference{Key: key, Category: category, Value: value, LastUpdated: time.Now()}
	written, err := s.durable.Preferences.Set(&pref)
	if err != nil {
		return pref, nil, unavailable("set preference", err)
	}

	if !written {
		// A newer value is already stored; make the cache agree with it.
		current, err := s.durable.Preferences.Get(key, category)
		if err != nil {
			return pref, nil, unavailable("set preference", err)
		}
		if current != nil {
			pref = *current
		}
	}

	raw, err := json.Marshal(pref.Value)
	if err != nil {
		return pref, nil, fmt.Errorf("set preference %s/%s: %w", category, key, err)
	}
	s.cache.putPref(category, key, raw)
	return pref, s.mirror, nil
}

// GetPreference returns the stored value, or def when absent
func (s *Store) GetPreference(key, category string, def any) (any, error) {
	if category == "" {
		category = models.DefaultCategory
	}

	if raw, ok := s.cache.getPref(category, key); ok {
		return decodeValue(raw)
	}

	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(prefLockKey(category, key))
	defer unlock()

	// a writer may have filled the cache while we waited
	if raw, ok := s.cache.getPref(category, key); ok {
		return decodeValue(raw)
	}

	pref, err := s.durable.Preferences.Get(key, category)
	if err != nil {
		return nil, unavailable("get preference", err)
	}
	if pref == nil {
		return def, nil
	}

	raw, err := json.Marshal(pref.Value)
	if err != nil {
		return nil, fmt.Errorf("get preference %s/%s: %w", category, key, err)
	}
	s.cache.putPref(category, key, raw)
	return decodeValue(raw)
}

// GetAllPreferences returns category -> key -> value from durable storage.
// An empty category returns every category.
func (s *Store) GetAllPreferences(category string) (map[string]map[string]any, error) {
	prefs, err := s.durable.Preferences.ListByCategory(category)
	if err != nil {
		return nil, unavailable("list preferences", err)
	}

	out := make(map[string]map[string]any)
	for _, p := range prefs {
		if out[p.Category] == nil {
			out[p.Category] = make(map[string]any)
		}
		out[p.Category][p.Key] = p.Value
	}
	return out, nil
}

// AddVisitor creates a visitor with one visit and returns its id
func (s *Store) AddVisitor(name string, signature []float64, known bool, notes string) (int64, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	v := models.Visitor{Name: name, Signature: signature, Known: known, Notes: notes}
	id, err := s.durable.Visitors.Create(&v)
	if err != nil {
		return 0, unavailable("add visitor", err)
	}
	if known {
		s.cache.putVisitor(v)
	}
	return id, nil
}

// GetVisitor returns a visitor by id or ErrNotFound
func (s *Store) GetVisitor(id int64) (*models.Visitor, error) {
	v, err := s.durable.Visitors.Get(id)
	if err != nil {
		return nil, unavailable("get visitor", err)
	}
	if v == nil {
		return nil, fmt.Errorf("visitor %d: %w", id, ErrNotFound)
	}
	return v, nil
}

// UpdateVisitor applies an explicit change, including promotion to known
// or demotion back to unknown
func (s *Store) UpdateVisitor(id int64, u models.VisitorUpdate) (*models.Visitor, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(visitorLockKey(id))
	defer unlock()

	v, err := s.durable.Visitors.Update(id, u)
	if err != nil {
		return nil, unavailable("update visitor", err)
	}
	if v == nil {
		return nil, fmt.Errorf("visitor %d: %w", id, ErrNotFound)
	}
	s.cache.putVisitor(*v)
	return v, nil
}

// IsKnownVisitor reports whether id is a known visitor
func (s *Store) IsKnownVisitor(id int64) bool {
	_, ok := s.cache.visitor(id)
	return ok
}

// KnownVisitorCount returns the number of cached known visitors
func (s *Store) KnownVisitorCount() int {
	return s.cache.knownCount()
}

// FindVisitorByName returns the most recently seen visitor with name, or nil
func (s *Store) FindVisitorByName(name string) (*models.Visitor, error) {
	v, err := s.durable.Visitors.FindByName(name)
	if err != nil {
		return nil, unavailable("find visitor", err)
	}
	return v, nil
}

// RecordVisit bumps the visit count and logs a visitor_visit event atomically.
// It returns false, with no event written, when id does not exist.
func (s *Store) RecordVisit(id int64) (bool, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()
	unlock := s.locks.Lock(visitorLockKey(id))
	defer unlock()

	v, err := s.durable.Visitors.RecordVisit(id, time.Now())
	if err != nil {
		return false, unavailable("record visit", err)
	}
	if v == nil {
		return false, nil
	}
	if v.Known {
		s.cache.putVisitor(*v)
	}
	return true, nil
}

// FindVisitorBySignature returns the best match for signature, or nil
func (s *Store) FindVisitorBySignature(signature []float64) (*models.Visitor, error) {
	if len(signature) == 0 {
		return nil, nil
	}

	candidates, err := s.durable.Visitors.ListWithSignature()
	if err != nil {
		return nil, unavailable("find visitor", err)
	}

	var (
		best      *models.Visitor
		bestScore float64
	)
	for i := range candidates {
		score, ok := s.matcher.Match(signature, candidates[i].Signature)
		if !ok {
			continue
		}
		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	return best, nil
}

// GetKnownVisitors returns all known visitors from durable storage
func (s *Store) GetKnownVisitors() ([]models.Visitor, error) {
	visitors, err := s.durable.Visitors.ListKnown()
	if err != nil {
		return nil, unavailable("known visitors", err)
	}
	return visitors, nil
}

// ListVisitors returns every visitor, known or not
func (s *Store) ListVisitors() ([]models.Visitor, error) {
	visitors, err := s.durable.Visitors.ListAll()
	if err != nil {
		return nil, unavailable("list visitors", err)
	}
	return visitors, nil
}

// AppendConversation logs one utterance and returns its entry id
func (s *Store) AppendConversation(speaker, message string, visitorID *int64, sentiment string) (int64, error) {
	s.gate.RLock()
	defer s.gate.RUnlock()

	entry := models.ConversationEntry{
		Speaker:   speaker,
		Message:   message,
		VisitorID: visitorID,
		Sentiment: sentiment,
	}
	id, err := s.durable.Conversations.Append(&entry)
	if err != nil {
		return 0, unavailable("append conversation", err)
	}

	if visitorID != nil {
		if v, ok := s.cache.visitor(*visitorID); ok {
			entry.VisitorName = v.Name
		}
	}
	s.cache.addEntry(entry)
	metrics.ConversationEntries.WithLabelValues(speaker).Inc()
	return id, nil
}

// RecentConversations returns up to limit cached entries, newest first.
// A limit of zero returns the whole cached window.
func (s *Store) RecentConversations(limit int) []models.ConversationEntry {
	return s.cache.recentEntries(limit)
}

// GetConversationHistory reads newest-first history from durable storage
func (s *Store) GetConversationHistory(limit int, visitorID *int64) ([]models.ConversationEntry, error) {
	entries, err := s.durable.Conversations.History(limit, visitorID)
	if err != nil {
		return nil, unavailable("conversation history", err)
	}
	return entries, nil
}

// LogEvent appends an event and returns its id
func (s *Store) LogEvent(eventType, description string, metadata map[string]any) (int64, error) {
	ev := models.Event{Type: eventType, Description: description, Metadata: metadata}
	id, err := s.durable.Events.Append(&ev)
	if err != nil {
		return 0, unavailable("log event", err)
	}
	return id, nil
}

// GetEvents returns up to limit events newest first, optionally filtered by type
func (s *Store) GetEvents(eventType string, limit int) ([]models.Event, error) {
	events, err := s.durable.Events.List(eventType, limit)
	if err != nil {
		return nil, unavailable("get events", err)
	}
	return events, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode cached preference: %w", err)
	}
	return v, nil
}

func prefLockKey(category, key string) string {
	return "pref:" + category + "/" + key
}

func visitorLockKey(id int64) string {
	return fmt.Sprintf("visitor:%d", id)
}
