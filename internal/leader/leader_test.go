package leader

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestFileLock_AcquireAndRelease(t *testing.T) {
	lock := NewFileLock(t.TempDir(), "cache_scheduler")

	ok, err := lock.TryAcquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("first acquisition should succeed")
	}

	// Acquiring an already-held lock is a no-op success.
	ok, err = lock.TryAcquire()
	if err != nil || !ok {
		t.Fatalf("re-acquire of held lock: ok=%t err=%v", ok, err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	// Release is idempotent.
	if err := lock.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
}

func TestFileLock_PIDStamp(t *testing.T) {
	dir := t.TempDir()
	lock := NewFileLock(dir, "scheduler")

	if ok, err := lock.TryAcquire(); err != nil || !ok {
		t.Fatalf("acquire: ok=%t err=%v", ok, err)
	}
	defer lock.Release()

	raw, err := os.ReadFile(filepath.Join(dir, "scheduler.lock"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if string(raw) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lock file content = %q, want own pid", raw)
	}
}

func TestFileLock_ReacquireAfterRelease(t *testing.T) {
	dir := t.TempDir()

	first := NewFileLock(dir, "scheduler")
	if ok, _ := first.TryAcquire(); !ok {
		t.Fatal("first acquire failed")
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	second := NewFileLock(dir, "scheduler")
	ok, err := second.TryAcquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if !ok {
		t.Error("lock not acquirable after release")
	}
	second.Release()
}

func TestFileLock_HeldElsewhere(t *testing.T) {
	dir := t.TempDir()

	lock := NewFileLock(dir, "scheduler")
	probe := NewFileLock(dir, "scheduler")

	if probe.HeldElsewhere() {
		t.Error("unheld lock reported as held elsewhere")
	}

	if ok, _ := lock.TryAcquire(); !ok {
		t.Fatal("acquire failed")
	}
	defer lock.Release()

	if !probe.HeldElsewhere() {
		t.Error("held lock not reported as held elsewhere")
	}
	if lock.HeldElsewhere() {
		t.Error("owner sees its own lock as held elsewhere")
	}
}

func TestFileLock_DistinctResourcesIndependent(t *testing.T) {
	dir := t.TempDir()

	a := NewFileLock(dir, "cache_scheduler")
	b := NewFileLock(dir, "scheduler")

	if ok, _ := a.TryAcquire(); !ok {
		t.Fatal("acquire a failed")
	}
	defer a.Release()

	ok, err := b.TryAcquire()
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	if !ok {
		t.Error("distinct resource blocked by unrelated lock")
	}
	b.Release()
}
