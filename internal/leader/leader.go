// Package leader provides host-local leader election backed by advisory
// file locks.
//
// Each background responsibility (cache refresher, job scheduler) is
// guarded by one named lock file. The first process to acquire the
// non-blocking exclusive lock owns the loop for its lifetime; the OS
// releases advisory locks on process death, which is relied upon for
// crash recovery. Lock file contents (the owner PID) are informational
// only; the OS lock state is authoritative.
package leader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// Lock elects at most one process per host to own a named resource.
// An alternative backend (e.g. a distributed lock) can be substituted
// without changing callers.
type Lock interface {
	// TryAcquire attempts a non-blocking acquisition.
	// Returns false when another process already owns the resource;
	// that is an expected outcome, not an error.
	TryAcquire() (bool, error)

	// Release releases the lock if held. Idempotent.
	Release() error
}

// FileLock implements Lock with an exclusive advisory lock on a file
// named after the resource.
type FileLock struct {
	resource string
	path     string
	fl       *flock.Flock
	held     bool
}

// NewFileLock creates a lock for resource under dir.
// The lock file is dir/<resource>.lock.
func NewFileLock(dir, resource string) *FileLock {
	path := filepath.Join(dir, resource+".lock")
	return &FileLock{
		resource: resource,
		path:     path,
		fl:       flock.New(path),
	}
}

// TryAcquire attempts the non-blocking exclusive lock.
// On success the owner PID is stamped into the lock file for operators.
func (l *FileLock) TryAcquire() (bool, error) {
	if l.held {
		return true, nil
	}

	locked, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", l.path, err)
	}
	if !locked {
		log.Printf("leader: %s held by another process", l.resource)
		return false, nil
	}

	l.held = true
	if err := os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		// PID stamp is informational only.
		log.Printf("leader: could not stamp pid into %s: %v", l.path, err)
	}
	log.Printf("leader: acquired %s", l.resource)
	return true, nil
}

// Release releases the lock. The lock file is left in place: its
// presence is not authoritative and a sibling may be racing to acquire.
func (l *FileLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	log.Printf("leader: released %s", l.resource)
	return nil
}

// HeldElsewhere reports whether another process currently owns the
// resource. Used by non-leader workers deciding between local and
// remote status reporting.
func (l *FileLock) HeldElsewhere() bool {
	if l.held {
		return false
	}
	probe := flock.New(l.path)
	locked, err := probe.TryLock()
	if err != nil {
		// Cannot tell; assume a leader exists so we fall back to the
		// read-only remote path instead of double-starting loops.
		return true
	}
	if locked {
		if err := probe.Unlock(); err != nil {
			log.Printf("leader: probe unlock %s: %v", l.path, err)
		}
		return false
	}
	return true
}
