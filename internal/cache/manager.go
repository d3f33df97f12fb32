// Package cache owns the in-process report cache and the three-tier
// read path: memory, then the shared cache file, then a synchronous
// recompute.
package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

// Outcome tags the result of a cache lookup so HTTP handlers can map
// "not yet computed" and "computation failed" to different responses.
type Outcome string

const (
	OutcomeHit    Outcome = "hit"
	OutcomeMiss   Outcome = "miss"
	OutcomeFailed Outcome = "failed"
)

// Result is a tagged lookup result.
type Result struct {
	Outcome Outcome
	Entry   domain.CacheEntry
	Err     error // set only when Outcome == OutcomeFailed
}

// SharedStore is the cross-process backing store (the shared cache file).
type SharedStore interface {
	Read() domain.CacheDocument
	WriteEntry(key domain.CacheKey, entry domain.CacheEntry) error
	WriteAll(entries domain.CacheDocument) error
}

// ComputeFunc produces a report synchronously. May block for seconds.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// MetricsSink records cache metrics. Methods must not block.
type MetricsSink interface {
	CacheLookup(key string, outcome string)
	CacheReset()
}

// Manager owns one in-memory CacheEntry per report kind plus a reference
// to the shared cache file. Inject it into request handlers and
// background loops; there are no package-level caches.
type Manager struct {
	mu         sync.Mutex
	entries    map[domain.CacheKey]domain.CacheEntry
	generation uint64

	shared     SharedStore
	ttl        time.Duration
	weatherTTL time.Duration
	clock      func() time.Time
	metrics    MetricsSink // optional, nil = disabled
}

// NewManager creates a manager with all entries empty.
func NewManager(shared SharedStore, ttl, weatherTTL time.Duration) *Manager {
	return &Manager{
		entries:    make(map[domain.CacheKey]domain.CacheEntry),
		shared:     shared,
		ttl:        ttl,
		weatherTTL: weatherTTL,
		clock:      time.Now,
	}
}

// WithMetrics attaches a metrics sink to the manager.
func (m *Manager) WithMetrics(sink MetricsSink) *Manager {
	m.metrics = sink
	return m
}

// IsValid reports whether entry is usable under ttl at time now.
// An entry exactly ttl old is already invalid.
func IsValid(entry domain.CacheEntry, ttl time.Duration, now time.Time) bool {
	if entry.Empty() {
		return false
	}
	age := now.Unix() - entry.Timestamp
	return age < int64(ttl.Seconds())
}

// TTLFor returns the TTL governing key. Weather has its own, longer TTL.
func (m *Manager) TTLFor(key domain.CacheKey) time.Duration {
	if key == domain.KeyWeather {
		return m.weatherTTL
	}
	return m.ttl
}

// Get returns the in-memory entry for key and whether it is currently
// valid. The {timestamp, data} pair is read atomically.
func (m *Manager) Get(key domain.CacheKey) (domain.CacheEntry, bool) {
	m.mu.Lock()
	entry := m.entries[key]
	m.mu.Unlock()
	return entry, IsValid(entry, m.TTLFor(key), m.clock())
}

// Generation returns the current reset generation. Capture it before a
// compute whose result will be Put; a reset in between invalidates the
// result.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Put stamps data with the current time and writes it through to both
// memory and the shared cache file. A put whose gen predates a reset is
// dropped: the data was computed for the old location.
func (m *Manager) Put(key domain.CacheKey, data json.RawMessage, gen uint64) error {
	entry := domain.CacheEntry{Timestamp: m.clock().Unix(), Data: data}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		log.Printf("cache: discarding stale put for %s after reset", key)
		return nil
	}
	m.entries[key] = entry
	m.mu.Unlock()

	if err := m.shared.WriteEntry(key, entry); err != nil {
		return fmt.Errorf("write shared entry %s: %w", key, err)
	}
	return nil
}

// Lookup resolves key through the three-tier fallback:
//
//  1. valid in-memory entry (no I/O),
//  2. hydrate from the shared cache file,
//  3. synchronous compute, writing through on success.
//
// With a nil compute the contract is non-blocking and tier 3 reports a
// miss instead. A reset that lands while a compute is in flight wins:
// the stale result is discarded and the lookup reports a miss.
func (m *Manager) Lookup(ctx context.Context, key domain.CacheKey, compute ComputeFunc) Result {
	now := m.clock()
	ttl := m.TTLFor(key)

	m.mu.Lock()
	entry := m.entries[key]
	gen := m.generation
	m.mu.Unlock()

	if IsValid(entry, ttl, now) {
		return m.done(key, Result{Outcome: OutcomeHit, Entry: entry})
	}

	if entry, ok := m.syncFromShared(key, gen); ok {
		return m.done(key, Result{Outcome: OutcomeHit, Entry: entry})
	}

	if compute == nil {
		return m.done(key, Result{Outcome: OutcomeMiss})
	}

	data, err := compute(ctx)
	if err != nil {
		log.Printf("cache: synchronous compute for %s failed: %v", key, err)
		return m.done(key, Result{Outcome: OutcomeFailed, Err: err})
	}

	fresh := domain.CacheEntry{Timestamp: m.clock().Unix(), Data: data}

	m.mu.Lock()
	if m.generation != gen {
		// A location reset happened mid-compute; the result belongs to
		// the old location and must not resurrect stale data.
		m.mu.Unlock()
		log.Printf("cache: discarding stale compute for %s after reset", key)
		return m.done(key, Result{Outcome: OutcomeMiss})
	}
	m.entries[key] = fresh
	m.mu.Unlock()

	if err := m.shared.WriteEntry(key, fresh); err != nil {
		log.Printf("cache: shared write-through for %s failed: %v", key, err)
	}
	return m.done(key, Result{Outcome: OutcomeHit, Entry: fresh})
}

// syncFromShared hydrates the in-memory entry for key from the shared
// cache file. Returns the entry and true only if the hydrated entry is
// valid.
func (m *Manager) syncFromShared(key domain.CacheKey, gen uint64) (domain.CacheEntry, bool) {
	doc := m.shared.Read()
	entry, ok := doc[key]
	if !ok || !IsValid(entry, m.TTLFor(key), m.clock()) {
		return domain.CacheEntry{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return domain.CacheEntry{}, false
	}
	m.entries[key] = entry
	return entry, true
}

// ResetAll empties every entry in memory and in the shared cache file as
// one logical operation, and bumps the generation so in-flight computes
// for the old location are discarded.
func (m *Manager) ResetAll() error {
	empty := domain.CacheDocument{}
	for _, key := range domain.AllCacheKeys() {
		empty[key] = domain.CacheEntry{}
	}

	m.mu.Lock()
	m.generation++
	m.entries = make(map[domain.CacheKey]domain.CacheEntry)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.CacheReset()
	}

	if err := m.shared.WriteAll(empty); err != nil {
		return fmt.Errorf("reset shared cache: %w", err)
	}
	return nil
}

// Snapshot reports per-key validity plus an all_ready flag covering the
// astronomical keys (weather is tracked separately, as its TTL differs).
func (m *Manager) Snapshot() (map[domain.CacheKey]bool, bool) {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	statuses := make(map[domain.CacheKey]bool, len(domain.AllCacheKeys()))
	allReady := true
	for _, key := range domain.AllCacheKeys() {
		valid := IsValid(m.entries[key], m.TTLFor(key), now)
		statuses[key] = valid
		if key != domain.KeyWeather && !valid {
			allReady = false
		}
	}
	return statuses, allReady
}

func (m *Manager) done(key domain.CacheKey, r Result) Result {
	if m.metrics != nil {
		m.metrics.CacheLookup(string(key), string(r.Outcome))
	}
	return r
}
