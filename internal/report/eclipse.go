package report

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EclipseKind distinguishes the two eclipse reports.
type EclipseKind string

const (
	EclipseSolar EclipseKind = "solar"
	EclipseLunar EclipseKind = "lunar"
)

// eclipseEvent is one entry in the bundled ephemeris table.
type eclipseEvent struct {
	Date time.Time
	Type string // e.g. "total", "partial", "annular", "penumbral"
	// VisibleRegions is a coarse description used to hint at visibility.
	VisibleRegions string
}

// Upcoming eclipses through 2030, from the NASA eclipse catalog.
// Report content is a lookup, not a computation; the geometry is out of
// scope for this service.
var solarEclipses = []eclipseEvent{
	{time.Date(2026, 2, 17, 12, 13, 0, 0, time.UTC), "annular", "Antarctica"},
	{time.Date(2026, 8, 12, 17, 47, 0, 0, time.UTC), "total", "Arctic, Greenland, Iceland, Spain"},
	{time.Date(2027, 2, 6, 16, 0, 0, 0, time.UTC), "annular", "South America, Atlantic, Africa"},
	{time.Date(2027, 8, 2, 10, 7, 0, 0, time.UTC), "total", "North Africa, Middle East"},
	{time.Date(2028, 1, 26, 15, 8, 0, 0, time.UTC), "annular", "South America, Atlantic, Western Europe"},
	{time.Date(2028, 7, 22, 2, 56, 0, 0, time.UTC), "total", "Australia, New Zealand"},
	{time.Date(2029, 1, 14, 17, 13, 0, 0, time.UTC), "partial", "North America"},
	{time.Date(2029, 6, 12, 4, 6, 0, 0, time.UTC), "partial", "Arctic, Scandinavia"},
	{time.Date(2030, 6, 1, 6, 29, 0, 0, time.UTC), "annular", "Europe, North Africa, Asia"},
	{time.Date(2030, 11, 25, 6, 51, 0, 0, time.UTC), "total", "Southern Africa, Australia"},
}

var lunarEclipses = []eclipseEvent{
	{time.Date(2026, 3, 3, 11, 34, 0, 0, time.UTC), "total", "Asia, Australia, Pacific, Americas"},
	{time.Date(2026, 8, 28, 4, 14, 0, 0, time.UTC), "partial", "Americas, Europe, Africa"},
	{time.Date(2027, 2, 20, 23, 13, 0, 0, time.UTC), "penumbral", "Americas, Europe, Africa"},
	{time.Date(2027, 8, 17, 7, 14, 0, 0, time.UTC), "penumbral", "Pacific, Americas"},
	{time.Date(2028, 1, 12, 4, 13, 0, 0, time.UTC), "partial", "Americas, Europe, Africa"},
	{time.Date(2028, 7, 6, 18, 20, 0, 0, time.UTC), "partial", "Europe, Africa, Asia, Australia"},
	{time.Date(2028, 12, 31, 16, 52, 0, 0, time.UTC), "total", "Europe, Africa, Asia, Australia"},
	{time.Date(2029, 6, 26, 3, 23, 0, 0, time.UTC), "total", "Americas, Europe, Africa"},
	{time.Date(2029, 12, 20, 22, 42, 0, 0, time.UTC), "total", "Americas, Europe, Africa, Asia"},
	{time.Date(2030, 6, 15, 18, 33, 0, 0, time.UTC), "partial", "Europe, Africa, Asia, Australia"},
}

// EclipseGenerator reports the next eclipse of its kind.
type EclipseGenerator struct {
	kind  EclipseKind
	clock func() time.Time
}

// NewEclipseGenerator creates the generator for kind.
func NewEclipseGenerator(kind EclipseKind) *EclipseGenerator {
	return &EclipseGenerator{kind: kind, clock: time.Now}
}

func (g *EclipseGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	table := solarEclipses
	if g.kind == EclipseLunar {
		table = lunarEclipses
	}

	now := g.clock()
	payload := struct {
		Kind string `json:"kind"`
		Next *struct {
			Date           string `json:"date"`
			Type           string `json:"type"`
			VisibleRegions string `json:"visible_regions"`
			DaysUntil      int    `json:"days_until"`
		} `json:"next"`
	}{Kind: string(g.kind)}

	for _, ev := range table {
		if ev.Date.After(now) {
			payload.Next = &struct {
				Date           string `json:"date"`
				Type           string `json:"type"`
				VisibleRegions string `json:"visible_regions"`
				DaysUntil      int    `json:"days_until"`
			}{
				Date:           ev.Date.In(zone).Format(time.RFC3339),
				Type:           ev.Type,
				VisibleRegions: ev.VisibleRegions,
				DaysUntil:      int(ev.Date.Sub(now).Hours() / 24),
			}
			break
		}
	}

	return json.Marshal(payload)
}
