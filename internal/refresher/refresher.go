// Package refresher implements the leader-only background loop that
// recomputes every cached report on a fixed interval.
package refresher

import (
	"context"
	"log"
	"time"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
)

// Cache is the write-through surface the refresher publishes to. The
// generation captured at cycle start guards against publishing results
// computed for a location that was reset away mid-cycle.
type Cache interface {
	Generation() uint64
	Put(key domain.CacheKey, data json.RawMessage, gen uint64) error
}

// Detector reacts to location changes before a cycle's generators run.
type Detector interface {
	Check(current domain.LocationSignature) (bool, error)
}

// SettingsLoader loads the current user configuration.
type SettingsLoader interface {
	Load() (settings.Settings, error)
}

// MetricsSink records refresh metrics. Methods must not block.
type MetricsSink interface {
	RefreshCycleCompleted(duration time.Duration, failures int)
}

// Config holds the refresher's timing.
// Interval must be strictly less than the cache TTL so a well-behaved
// reader never observes an expired entry.
type Config struct {
	Interval time.Duration
}

// Refresher runs the refresh loop. Construct one per process; only the
// process holding the cache_scheduler leader lock should Run it.
type Refresher struct {
	config     Config
	cache      Cache
	detector   Detector
	generators map[domain.CacheKey]report.Generator
	loader     SettingsLoader
	clock      func() time.Time
	metrics    MetricsSink // optional, nil = disabled
}

// New creates a refresher.
func New(config Config, cache Cache, detector Detector, generators map[domain.CacheKey]report.Generator, loader SettingsLoader) *Refresher {
	return &Refresher{
		config:     config,
		cache:      cache,
		detector:   detector,
		generators: generators,
		loader:     loader,
		clock:      time.Now,
	}
}

// WithMetrics attaches a metrics sink to the refresher.
func (r *Refresher) WithMetrics(sink MetricsSink) *Refresher {
	r.metrics = sink
	return r
}

// Run executes refresh cycles until ctx is cancelled. The first cycle
// runs immediately so a freshly elected leader populates the cache
// without waiting out a full interval.
func (r *Refresher) Run(ctx context.Context) {
	log.Printf("refresher: started, interval=%s", r.config.Interval)

	log.Println("refresher: running initial cache population")
	r.runCycle(ctx)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("refresher: stopped")
			return
		case <-ticker.C:
			log.Println("refresher: running scheduled cache update")
			r.runCycle(ctx)
		}
	}
}

// runCycle checks for a location change once, then invokes every key's
// generator independently. One key's failure never aborts the rest;
// partial success is expected (a transient weather API failure must not
// prevent the moon report from refreshing).
func (r *Refresher) runCycle(ctx context.Context) {
	start := r.clock()
	failures := 0

	cfg, err := r.loader.Load()
	if err != nil {
		log.Printf("refresher: cannot load settings, skipping cycle: %v", err)
		return
	}

	if _, err := r.detector.Check(cfg.Signature()); err != nil {
		log.Printf("refresher: location check failed: %v", err)
	}

	gen := r.cache.Generation()
	loc := report.Location{
		Name:      cfg.Location.Name,
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Elevation: cfg.Location.Elevation,
		Timezone:  cfg.Location.Timezone,
	}

	for _, key := range domain.AllCacheKeys() {
		if ctx.Err() != nil {
			log.Println("refresher: stop requested mid-cycle")
			return
		}

		generator, ok := r.generators[key]
		if !ok {
			continue
		}

		data, err := generator.Generate(ctx, loc)
		if err != nil {
			log.Printf("refresher: generator %s failed: %v", key, err)
			failures++
			continue
		}

		// Write through immediately so sibling processes observe
		// partial progress mid-cycle.
		if err := r.cache.Put(key, data, gen); err != nil {
			log.Printf("refresher: publish %s failed: %v", key, err)
			failures++
		}
	}

	duration := r.clock().Sub(start)
	log.Printf("refresher: cycle completed in %s (failures=%d)", duration, failures)
	if r.metrics != nil {
		r.metrics.RefreshCycleCompleted(duration, failures)
	}
}
