package cache

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/draftkit/sleeper-mcp/logger"
)

// entry is a single cached payload. Entries are immutable once stored; a Set
// on the same key replaces the whole entry.
type entry struct {
	data      any
	category  Category
	createdAt time.Time
	expiresAt time.Time
}

// expired treats expiresAt itself as already expired, so a zero TTL entry is
// never readable.
func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}

func (e *entry) age(now time.Time) time.Duration {
	return now.Sub(e.createdAt)
}

// Stats is a snapshot of the manager's lifetime counters.
type Stats struct {
	Hits           uint64  `json:"hits"`
	Misses         uint64  `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
	Evictions      uint64  `json:"evictions"`
	Invalidations  uint64  `json:"invalidations"`
	TotalEntries   int     `json:"total_entries"`
	TotalRequests  uint64  `json:"total_requests"`
}

// CategoryInfo is the per-category slice of Info.
type CategoryInfo struct {
	Count   int `json:"count"`
	Expired int `json:"expired"`
}

// Info describes the current contents of the store, computed from a live
// scan. ExpiredEntries counts entries past their TTL that no Get or sweep has
// purged yet.
type Info struct {
	TotalEntries      int                       `json:"total_entries"`
	ExpiredEntries    int                       `json:"expired_entries"`
	EntriesByCategory map[Category]CategoryInfo `json:"entries_by_category"`
	OldestEntryAge    time.Duration             `json:"oldest_entry_age"`
	NewestEntryAge    time.Duration             `json:"newest_entry_age"`
}

// Manager is a thread-safe in-memory TTL cache keyed by string, with
// per-category default expirations. Expiry is lazy: Get evicts on read and
// CleanupExpired does a full sweep for an external scheduler to invoke. There
// is no background janitor.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttls    map[Category]time.Duration
	now     func() time.Time
	log     logger.Logger

	hits          uint64
	misses        uint64
	evictions     uint64
	invalidations uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the default TTL for one category.
func WithTTL(c Category, ttl time.Duration) Option {
	return func(m *Manager) { m.ttls[c] = ttl }
}

// WithTTLOverrides overrides default TTLs for several categories at once.
// Unspecified categories keep their defaults.
func WithTTLOverrides(overrides map[Category]time.Duration) Option {
	return func(m *Manager) {
		for c, ttl := range overrides {
			m.ttls[c] = ttl
		}
	}
}

// WithLogger sets the logger used for hit/miss trace logging.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithNowFunc replaces the clock, letting tests move time instead of
// sleeping.
func WithNowFunc(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New returns an empty Manager with zeroed counters.
func New(opts ...Option) *Manager {
	m := &Manager{
		entries: make(map[string]*entry),
		ttls:    make(map[Category]time.Duration, len(defaultTTLs)),
		now:     time.Now,
		log:     logger.NewConsoleLogger(logger.LevelNone),
	}
	for c, ttl := range defaultTTLs {
		m.ttls[c] = ttl
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the effective TTL for a category, override included.
func (m *Manager) TTL(c Category) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl, ok := m.ttls[c]; ok {
		return ttl
	}
	return DefaultTTL(c)
}

// Get returns the payload stored at key, or found=false on a miss. An entry
// past its TTL is evicted here, counting one eviction and one miss. The
// category argument is log context only; it is not checked against the
// stored entry's category.
func (m *Manager) Get(key string, category Category) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		m.misses++
		m.log.Trace("cache miss for key: %s (category: %s)", key, category)
		return nil, false
	}
	now := m.now()
	if e.expired(now) {
		delete(m.entries, key)
		m.evictions++
		m.misses++
		m.log.Trace("cache expired for key: %s (category: %s, age: %s)", key, category, e.age(now))
		return nil, false
	}
	m.hits++
	m.log.Trace("cache hit for key: %s (category: %s, age: %s)", key, category, e.age(now))
	return e.data, true
}

// Set stores data at key with the category's effective TTL, replacing any
// existing entry.
func (m *Manager) Set(key string, data any, category Category) {
	m.set(key, data, category, m.categoryTTL(category))
}

// SetWithTTL stores data at key with an explicit TTL, replacing any existing
// entry. The TTL is taken as given: zero or negative values produce an entry
// that is already expired on first read.
func (m *Manager) SetWithTTL(key string, data any, category Category, ttl time.Duration) {
	m.set(key, data, category, ttl)
}

func (m *Manager) categoryTTL(c Category) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl, ok := m.ttls[c]; ok {
		return ttl
	}
	return DefaultTTL(c)
}

func (m *Manager) set(key string, data any, category Category, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.entries[key] = &entry{
		data:      data,
		category:  category,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	m.log.Trace("cached data for key: %s (category: %s, ttl: %s)", key, category, ttl)
}

// Invalidate removes key if present and reports whether a removal occurred.
func (m *Manager) Invalidate(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	m.invalidations++
	m.log.Trace("invalidated cache key: %s", key)
	return true
}

// InvalidateByPattern removes every key containing pattern as a literal
// substring and returns the count removed.
func (m *Manager) InvalidateByPattern(pattern string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	// snapshot before mutating the map
	var matched []string
	for key := range m.entries {
		if strings.Contains(key, pattern) {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		delete(m.entries, key)
		m.invalidations++
	}
	if len(matched) > 0 {
		m.log.Trace("invalidated %d cache keys matching pattern: %s", len(matched), pattern)
	}
	return len(matched)
}

// InvalidateByCategory removes every entry stored under category and returns
// the count removed.
func (m *Manager) InvalidateByCategory(category Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for key, e := range m.entries {
		if e.category == category {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		delete(m.entries, key)
		m.invalidations++
	}
	if len(matched) > 0 {
		m.log.Trace("invalidated %d cache entries of category: %s", len(matched), category)
	}
	return len(matched)
}

// Clear removes every entry and returns the count removed.
func (m *Manager) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.entries)
	m.entries = make(map[string]*entry)
	m.invalidations += uint64(count)
	m.log.Debug("cleared all cache entries (%d entries)", count)
	return count
}

// CleanupExpired removes every entry whose expiration is at or before now and
// returns the count removed. This is the explicit sweep counterpart to Get's
// lazy eviction, meant to be driven by an external scheduler.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var expired []string
	for key, e := range m.entries {
		if e.expired(now) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		delete(m.entries, key)
		m.evictions++
	}
	if len(expired) > 0 {
		m.log.Trace("cleaned up %d expired cache entries", len(expired))
	}
	return len(expired)
}

// Stats returns a snapshot of the lifetime counters. The hit rate is 0 until
// the first request.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := m.hits + m.misses
	var hitRate float64
	if total > 0 {
		hitRate = math.Round(float64(m.hits)/float64(total)*100*100) / 100
	}
	return Stats{
		Hits:           m.hits,
		Misses:         m.misses,
		HitRatePercent: hitRate,
		Evictions:      m.evictions,
		Invalidations:  m.invalidations,
		TotalEntries:   len(m.entries),
		TotalRequests:  total,
	}
}

// CacheInfo scans the current store and describes its contents. Ages are zero
// when the store is empty.
func (m *Manager) CacheInfo() Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := Info{EntriesByCategory: make(map[Category]CategoryInfo)}
	if len(m.entries) == 0 {
		return info
	}

	now := m.now()
	var oldest, newest time.Duration
	first := true
	for _, e := range m.entries {
		age := e.age(now)
		if first {
			oldest, newest = age, age
			first = false
		} else {
			if age > oldest {
				oldest = age
			}
			if age < newest {
				newest = age
			}
		}
		ci := info.EntriesByCategory[e.category]
		ci.Count++
		if e.expired(now) {
			ci.Expired++
			info.ExpiredEntries++
		}
		info.EntriesByCategory[e.category] = ci
	}
	info.TotalEntries = len(m.entries)
	info.OldestEntryAge = oldest
	info.NewestEntryAge = newest
	return info
}

// MatchupTTL returns the TTL for matchup data: live scoring is volatile, so
// it gets 5 minutes instead of the usual hour.
func (m *Manager) MatchupTTL(isLive bool) time.Duration {
	if isLive {
		return 5 * time.Minute
	}
	return time.Hour
}
