package location

import (
	"errors"
	"testing"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

type mockResetter struct {
	resets int
	err    error
}

func (m *mockResetter) ResetAll() error {
	if m.err != nil {
		return m.err
	}
	m.resets++
	return nil
}

func paris() domain.LocationSignature {
	return domain.LocationSignature{
		Latitude:  domain.Float(48.866669),
		Longitude: domain.Float(2.33333),
		Elevation: domain.Float(35),
		Timezone:  "Europe/Paris",
	}
}

func atacama() domain.LocationSignature {
	return domain.LocationSignature{
		Latitude:  domain.Float(-24.627),
		Longitude: domain.Float(-70.404),
		Elevation: domain.Float(2635),
		Timezone:  "America/Santiago",
	}
}

// TestDetector_FirstBootAdoptsWithoutReset: the very first observed
// location is adopted silently. Resetting an already-empty cache on
// every fresh install would be pointless noise.
func TestDetector_FirstBootAdoptsWithoutReset(t *testing.T) {
	resetter := &mockResetter{}
	d := NewDetector(t.TempDir(), resetter)

	reset, err := d.Check(paris())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if reset {
		t.Error("first observation should not reset")
	}
	if resetter.resets != 0 {
		t.Errorf("resets = %d, want 0", resetter.resets)
	}
}

func TestDetector_SameLocationNoOp(t *testing.T) {
	resetter := &mockResetter{}
	d := NewDetector(t.TempDir(), resetter)

	d.Check(paris())
	reset, err := d.Check(paris())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if reset || resetter.resets != 0 {
		t.Errorf("unchanged location triggered reset (reset=%t, count=%d)", reset, resetter.resets)
	}
}

func TestDetector_ChangeResetsOnce(t *testing.T) {
	resetter := &mockResetter{}
	d := NewDetector(t.TempDir(), resetter)

	d.Check(paris())
	reset, err := d.Check(atacama())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !reset {
		t.Error("moved location should reset")
	}
	if resetter.resets != 1 {
		t.Errorf("resets = %d, want 1", resetter.resets)
	}

	// Settled at the new location: no further resets.
	if reset, _ := d.Check(atacama()); reset {
		t.Error("second check at new location reset again")
	}
}

// TestDetector_SignatureSurvivesRestart: a restart with the same
// location must not look like a change.
func TestDetector_SignatureSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	resetter := &mockResetter{}

	d1 := NewDetector(dir, resetter)
	d1.Check(paris())

	d2 := NewDetector(dir, resetter)
	reset, err := d2.Check(paris())
	if err != nil {
		t.Fatalf("check after restart: %v", err)
	}
	if reset || resetter.resets != 0 {
		t.Error("restart with unchanged location triggered a reset")
	}

	if !d2.Changed(atacama()) {
		t.Error("restarted detector does not see a real change")
	}
}

// TestDetector_FailedResetKeepsOldSignature: when the reset fails the
// old signature is kept so the reset is retried on the next check.
func TestDetector_FailedResetKeepsOldSignature(t *testing.T) {
	resetter := &mockResetter{}
	d := NewDetector(t.TempDir(), resetter)
	d.Check(paris())

	resetter.err = errors.New("disk full")
	if _, err := d.Check(atacama()); err == nil {
		t.Fatal("expected error from failed reset")
	}

	resetter.err = nil
	reset, err := d.Check(atacama())
	if err != nil {
		t.Fatalf("retry check: %v", err)
	}
	if !reset {
		t.Error("reset not retried after earlier failure")
	}
}

func TestDetector_ChangedWhenNeverInitialized(t *testing.T) {
	d := NewDetector(t.TempDir(), &mockResetter{})
	if !d.Changed(paris()) {
		t.Error("never-initialized detector should report any location as changed")
	}
}
