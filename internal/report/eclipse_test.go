package report

import (
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/testutil"
)

type eclipsePayload struct {
	Kind string `json:"kind"`
	Next *struct {
		Date           string `json:"date"`
		Type           string `json:"type"`
		VisibleRegions string `json:"visible_regions"`
		DaysUntil      int    `json:"days_until"`
	} `json:"next"`
}

func TestEclipseGenerator_NextSolar(t *testing.T) {
	g := NewEclipseGenerator(EclipseSolar)
	g.clock = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	raw, err := g.Generate(testutil.TestContext(t), Location{Timezone: "UTC"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload eclipsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Kind != "solar" {
		t.Errorf("kind = %q", payload.Kind)
	}
	if payload.Next == nil {
		t.Fatal("no next eclipse found")
	}
	// The 2026-02-17 annular eclipse is already past; the next is the
	// 2026-08-12 total.
	if payload.Next.Type != "total" || payload.Next.Date[:10] != "2026-08-12" {
		t.Errorf("next = %+v, want 2026-08-12 total", payload.Next)
	}
	if payload.Next.DaysUntil < 160 || payload.Next.DaysUntil > 170 {
		t.Errorf("days_until = %d", payload.Next.DaysUntil)
	}
}

func TestEclipseGenerator_NextLunarInLocalZone(t *testing.T) {
	g := NewEclipseGenerator(EclipseLunar)
	g.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	raw, err := g.Generate(testutil.TestContext(t), Location{Timezone: "Europe/Paris"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload eclipsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Next == nil {
		t.Fatal("no next eclipse found")
	}
	// 2026-03-03 11:34 UTC is 12:34 in Paris (CET).
	if payload.Next.Date != "2026-03-03T12:34:00+01:00" {
		t.Errorf("date = %q", payload.Next.Date)
	}
}

func TestEclipseGenerator_TableExhausted(t *testing.T) {
	g := NewEclipseGenerator(EclipseSolar)
	g.clock = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }

	raw, err := g.Generate(testutil.TestContext(t), Location{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload eclipsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Next != nil {
		t.Errorf("next = %+v, want null past the table horizon", payload.Next)
	}
}
