package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
	"github.com/WorldOfGZ/myastroboard/internal/testutil"
)

// mockShared is an in-memory stand-in for the shared cache file.
type mockShared struct {
	mu         sync.Mutex
	doc        domain.CacheDocument
	writeErr   error
	writeCalls int
	resetCalls int
}

func newMockShared() *mockShared {
	return &mockShared{doc: domain.CacheDocument{}}
}

func (s *mockShared) Read() domain.CacheDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.CacheDocument{}
	for k, v := range s.doc {
		out[k] = v
	}
	return out
}

func (s *mockShared) WriteEntry(key domain.CacheKey, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writeCalls++
	s.doc[key] = entry
	return nil
}

func (s *mockShared) WriteAll(entries domain.CacheDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalls++
	s.doc = domain.CacheDocument{}
	for k, v := range entries {
		s.doc[k] = v
	}
	return nil
}

func (s *mockShared) set(key domain.CacheKey, entry domain.CacheEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc[key] = entry
}

func newTestManager(shared SharedStore, clock *testutil.FakeClock) *Manager {
	m := NewManager(shared, 1800*time.Second, 3600*time.Second)
	m.clock = clock.Now
	return m
}

func TestIsValid_TTLBoundary(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := domain.CacheEntry{Timestamp: base.Unix(), Data: json.RawMessage(`{"x":1}`)}
	ttl := 1800 * time.Second

	cases := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh", 0, true},
		{"almost expired", 1799 * time.Second, true},
		{"exactly ttl old", 1800 * time.Second, false},
		{"past ttl", 1801 * time.Second, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(entry, ttl, base.Add(tc.age)); got != tc.want {
				t.Errorf("IsValid(age=%s) = %t, want %t", tc.age, got, tc.want)
			}
		})
	}
}

func TestIsValid_EmptyEntryNeverValid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	empty := domain.CacheEntry{Timestamp: now.Unix()}
	if IsValid(empty, time.Hour, now) {
		t.Error("entry with nil data should never be valid")
	}

	nullData := domain.CacheEntry{Timestamp: now.Unix(), Data: json.RawMessage("null")}
	if IsValid(nullData, time.Hour, now) {
		t.Error("entry with null data should never be valid")
	}
}

// TestManager_Lookup_Tiers walks the fallback chain: memory hit first,
// then hydration from the shared file, then synchronous compute.
func TestManager_Lookup_Tiers(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	shared := newMockShared()
	m := newTestManager(shared, clock)
	ctx := testutil.TestContext(t)

	// Tier 3: nothing cached anywhere, compute runs.
	computed := 0
	compute := func(ctx context.Context) (json.RawMessage, error) {
		computed++
		return json.RawMessage(`{"phase":"full"}`), nil
	}

	res := m.Lookup(ctx, domain.KeyMoonReport, compute)
	if res.Outcome != OutcomeHit {
		t.Fatalf("first lookup outcome = %s, want hit", res.Outcome)
	}
	if computed != 1 {
		t.Fatalf("compute calls = %d, want 1", computed)
	}

	// Tier 1: second lookup is served from memory.
	res = m.Lookup(ctx, domain.KeyMoonReport, compute)
	if res.Outcome != OutcomeHit || computed != 1 {
		t.Fatalf("second lookup outcome=%s computed=%d, want hit from memory", res.Outcome, computed)
	}

	// Tier 2: fresh manager, entry only in the shared file.
	m2 := newTestManager(shared, clock)
	res = m2.Lookup(ctx, domain.KeyMoonReport, compute)
	if res.Outcome != OutcomeHit {
		t.Fatalf("shared-file lookup outcome = %s, want hit", res.Outcome)
	}
	if computed != 1 {
		t.Fatalf("compute calls = %d, want 1 (should hydrate from shared file)", computed)
	}
}

func TestManager_Lookup_NilComputeReportsMiss(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(newMockShared(), clock)

	res := m.Lookup(testutil.TestContext(t), domain.KeySunReport, nil)
	if res.Outcome != OutcomeMiss {
		t.Errorf("outcome = %s, want miss", res.Outcome)
	}
}

func TestManager_Lookup_ComputeFailure(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(newMockShared(), clock)

	wantErr := errors.New("api unreachable")
	res := m.Lookup(testutil.TestContext(t), domain.KeyWeather, func(ctx context.Context) (json.RawMessage, error) {
		return nil, wantErr
	})

	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %s, want failed", res.Outcome)
	}
	if !errors.Is(res.Err, wantErr) {
		t.Errorf("err = %v, want %v", res.Err, wantErr)
	}
}

// TestManager_Lookup_ExpiryRecompute covers the canonical timing
// scenario: an entry written at t=0 with a 1800s TTL is still served at
// t=1700 and recomputed at t=1900.
func TestManager_Lookup_ExpiryRecompute(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(newMockShared(), clock)
	ctx := testutil.TestContext(t)

	computed := 0
	compute := func(ctx context.Context) (json.RawMessage, error) {
		computed++
		return json.RawMessage(`{"v":1}`), nil
	}

	m.Lookup(ctx, domain.KeyMoonReport, compute)

	clock.Advance(1700 * time.Second)
	if res := m.Lookup(ctx, domain.KeyMoonReport, compute); res.Outcome != OutcomeHit || computed != 1 {
		t.Fatalf("at t=1700: outcome=%s computed=%d, want cached hit", res.Outcome, computed)
	}

	clock.Advance(200 * time.Second)
	if res := m.Lookup(ctx, domain.KeyMoonReport, compute); res.Outcome != OutcomeHit || computed != 2 {
		t.Fatalf("at t=1900: outcome=%s computed=%d, want recompute", res.Outcome, computed)
	}
}

func TestManager_WeatherUsesOwnTTL(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(newMockShared(), clock)
	ctx := testutil.TestContext(t)

	computed := 0
	compute := func(ctx context.Context) (json.RawMessage, error) {
		computed++
		return json.RawMessage(`{"v":1}`), nil
	}

	m.Lookup(ctx, domain.KeyWeather, compute)

	// Past the regular TTL but within the weather TTL.
	clock.Advance(2000 * time.Second)
	if res := m.Lookup(ctx, domain.KeyWeather, compute); res.Outcome != OutcomeHit || computed != 1 {
		t.Fatalf("weather at t=2000: outcome=%s computed=%d, want cached hit", res.Outcome, computed)
	}

	clock.Advance(1700 * time.Second)
	if res := m.Lookup(ctx, domain.KeyWeather, compute); computed != 2 {
		t.Fatalf("weather at t=3700: outcome=%s computed=%d, want recompute", res.Outcome, computed)
	}
}

// TestManager_ResetDiscardsInFlightCompute verifies that a reset racing
// a synchronous compute is authoritative: the stale result is dropped
// and the lookup reports a miss.
func TestManager_ResetDiscardsInFlightCompute(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	shared := newMockShared()
	m := newTestManager(shared, clock)

	res := m.Lookup(testutil.TestContext(t), domain.KeyMoonReport, func(ctx context.Context) (json.RawMessage, error) {
		// The reset lands while the compute is running.
		if err := m.ResetAll(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		return json.RawMessage(`{"stale":true}`), nil
	})

	if res.Outcome != OutcomeMiss {
		t.Fatalf("outcome = %s, want miss after concurrent reset", res.Outcome)
	}
	if entry, valid := m.Get(domain.KeyMoonReport); valid {
		t.Errorf("stale entry survived the reset: %s", entry.Data)
	}
	if doc := shared.Read(); !doc[domain.KeyMoonReport].Empty() {
		t.Error("stale entry leaked into the shared file")
	}
}

// A Put whose generation predates a reset must be dropped, in memory and
// in the shared file, so old-location data cannot land after the reset.
func TestManager_ResetDiscardsStalePut(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	shared := newMockShared()
	m := newTestManager(shared, clock)

	gen := m.Generation()
	if err := m.ResetAll(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if err := m.Put(domain.KeyMoonReport, json.RawMessage(`{"stale":true}`), gen); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, valid := m.Get(domain.KeyMoonReport); valid {
		t.Error("stale put landed in memory after reset")
	}
	if doc := shared.Read(); !doc[domain.KeyMoonReport].Empty() {
		t.Error("stale put leaked into the shared file")
	}

	// A put stamped with the post-reset generation goes through.
	if err := m.Put(domain.KeyMoonReport, json.RawMessage(`{"fresh":true}`), m.Generation()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, valid := m.Get(domain.KeyMoonReport); !valid {
		t.Error("current-generation put was dropped")
	}
}

func TestManager_ResetAll(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	shared := newMockShared()
	m := newTestManager(shared, clock)

	if err := m.Put(domain.KeySunReport, json.RawMessage(`{"v":1}`), m.Generation()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := m.ResetAll(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, valid := m.Get(domain.KeySunReport); valid {
		t.Error("memory entry still valid after reset")
	}

	doc := shared.Read()
	if len(doc) != len(domain.AllCacheKeys()) {
		t.Fatalf("shared doc has %d entries, want %d", len(doc), len(domain.AllCacheKeys()))
	}
	for key, entry := range doc {
		if !entry.Empty() {
			t.Errorf("shared entry %s not empty after reset", key)
		}
	}
}

func TestManager_Snapshot(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := newTestManager(newMockShared(), clock)

	statuses, allReady := m.Snapshot()
	if allReady {
		t.Error("empty cache reported all_ready")
	}
	if len(statuses) != len(domain.AllCacheKeys()) {
		t.Fatalf("snapshot has %d keys, want %d", len(statuses), len(domain.AllCacheKeys()))
	}

	for _, key := range domain.AllCacheKeys() {
		if key == domain.KeyWeather {
			continue
		}
		if err := m.Put(key, json.RawMessage(`{"v":1}`), m.Generation()); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	statuses, allReady = m.Snapshot()
	if !allReady {
		t.Error("all astronomical keys cached but all_ready is false")
	}
	if statuses[domain.KeyWeather] {
		t.Error("weather reported valid without data")
	}
}
