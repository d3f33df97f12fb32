// Package cachefile implements the shared on-disk cache document used to
// coordinate report caches across worker processes.
//
// One JSON file maps report kind to {timestamp, data}. A dedicated lock
// file (distinct from the data file) guards every read and write with an
// OS advisory exclusive lock, so sibling processes on the same host never
// observe torn documents. A missing, empty, or corrupt data file always
// degrades to an empty document; corruption self-heals on the next write.
package cachefile

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

const (
	dataFileName = "shared_cache.json"
	lockFileName = "cache_file.lock"
)

// Store is the cross-process cache backing store.
// All methods are safe for concurrent use from multiple goroutines and
// multiple processes sharing the same directory.
type Store struct {
	// mu serializes goroutines within this process; the flock only
	// excludes other processes.
	mu       sync.Mutex
	dataPath string
	lock     *flock.Flock
}

// New creates a store rooted at dir, creating dir if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		dataPath: filepath.Join(dir, dataFileName),
		lock:     flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Read returns the current shared cache document.
// Any I/O or parse failure yields an empty document, never an error:
// a corrupt cache must degrade to a cold cache, not a crash.
func (s *Store) Read() domain.CacheDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		log.Printf("cachefile: lock for read failed: %v", err)
		return domain.CacheDocument{}
	}
	defer s.unlock()

	return s.readLocked()
}

// WriteEntry updates a single key in the shared document.
// The document is re-read under the lock before writing so a sibling
// process writing a different key concurrently is never clobbered.
func (s *Store) WriteEntry(key domain.CacheKey, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock for write: %w", err)
	}
	defer s.unlock()

	doc := s.readLocked()
	doc[key] = entry
	return s.writeLocked(doc)
}

// WriteAll replaces the given keys in one locked section.
// Used by the full cache reset so readers never observe a half-reset
// document.
func (s *Store) WriteAll(entries domain.CacheDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock for write: %w", err)
	}
	defer s.unlock()

	doc := s.readLocked()
	for key, entry := range entries {
		doc[key] = entry
	}
	return s.writeLocked(doc)
}

func (s *Store) readLocked() domain.CacheDocument {
	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("cachefile: read failed, treating as empty: %v", err)
		}
		return domain.CacheDocument{}
	}

	var doc domain.CacheDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("cachefile: corrupt document, treating as empty: %v", err)
		return domain.CacheDocument{}
	}
	if doc == nil {
		doc = domain.CacheDocument{}
	}
	return doc
}

// writeLocked writes in place. The advisory lock already serializes all
// writers, so an atomic rename is not required.
func (s *Store) writeLocked(doc domain.CacheDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := os.WriteFile(s.dataPath, raw, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		log.Printf("cachefile: unlock failed: %v", err)
	}
}
