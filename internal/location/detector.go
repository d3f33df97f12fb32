// Package location detects changes to the observing location and resets
// the report caches when one happens.
package location

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

const signatureFileName = "location_cache.json"

// Resetter empties every cache entry, in memory and in the shared file.
type Resetter interface {
	ResetAll() error
}

// Detector compares the active location configuration against a
// persisted signature. The signature survives process restarts so a
// restart alone never looks like a location change.
type Detector struct {
	mu    sync.Mutex
	path  string
	last  domain.LocationSignature
	cache Resetter
}

// NewDetector loads the persisted signature from dir if present.
// A missing or unreadable signature file leaves the detector in the
// never-initialized state.
func NewDetector(dir string, cache Resetter) *Detector {
	d := &Detector{
		path:  filepath.Join(dir, signatureFileName),
		cache: cache,
	}
	d.load()
	return d
}

func (d *Detector) load() {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("location: could not load signature, treating as never initialized: %v", err)
		}
		return
	}
	var sig domain.LocationSignature
	if err := json.Unmarshal(raw, &sig); err != nil {
		log.Printf("location: corrupt signature file, treating as never initialized: %v", err)
		return
	}
	d.last = sig
}

func (d *Detector) persist() error {
	raw, err := json.Marshal(d.last)
	if err != nil {
		return fmt.Errorf("marshal signature: %w", err)
	}
	if err := os.WriteFile(d.path, raw, 0o644); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}
	return nil
}

// Changed reports whether current differs from the persisted signature.
// A never-initialized detector reports true for any observed location.
func (d *Detector) Changed(current domain.LocationSignature) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last.Unset() {
		return true
	}
	return !d.last.Equal(current)
}

// Check observes the current location and reacts to a change: the first
// ever observation is adopted silently (no reset storm on first boot);
// any later difference resets every cache entry and then persists the
// new signature. Returns true if a reset was performed.
func (d *Detector) Check(current domain.LocationSignature) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last.Unset() {
		d.last = current
		if err := d.persist(); err != nil {
			// Next restart may see a false positive, nothing worse.
			log.Printf("location: could not persist initial signature: %v", err)
		}
		log.Printf("location: adopted initial signature")
		return false, nil
	}

	if d.last.Equal(current) {
		return false, nil
	}

	log.Printf("location: change detected, resetting all caches")
	if err := d.cache.ResetAll(); err != nil {
		// Keep the old signature so the reset is retried next cycle.
		return false, fmt.Errorf("reset caches: %w", err)
	}

	d.last = current
	if err := d.persist(); err != nil {
		log.Printf("location: could not persist new signature: %v", err)
	}
	return true, nil
}
