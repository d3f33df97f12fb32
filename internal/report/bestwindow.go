package report

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// BestWindowMode selects how strictly the observation window is scored.
type BestWindowMode string

const (
	ModeStrict       BestWindowMode = "strict"       // astronomical dark, moon down
	ModePractical    BestWindowMode = "practical"    // nautical dark is enough
	ModeIllumination BestWindowMode = "illumination" // moon up is fine if dim
)

// BestWindow is tonight's best observation window for one mode.
type BestWindow struct {
	Start         *string `json:"start"`
	End           *string `json:"end"`
	DurationHours float64 `json:"duration_hours"`
	Score         float64 `json:"score"`
}

// BestWindowGenerator scores tonight's observation windows for one mode.
type BestWindowGenerator struct {
	mode  BestWindowMode
	clock func() time.Time
}

// NewBestWindowGenerator creates the generator for mode.
func NewBestWindowGenerator(mode BestWindowMode) *BestWindowGenerator {
	return &BestWindowGenerator{mode: mode, clock: time.Now}
}

func (g *BestWindowGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	local := g.clock().In(zone)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, zone)

	window, err := g.bestWindow(noon, loc)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Location   Location       `json:"location"`
		Mode       BestWindowMode `json:"mode"`
		BestWindow BestWindow     `json:"best_window"`
		Units      struct {
			Times    string `json:"times"`
			Duration string `json:"duration"`
			Score    string `json:"score"`
		} `json:"units"`
	}{Location: loc, Mode: g.mode}
	payload.Units.Times = "local timezone"
	payload.Units.Duration = "hours"
	payload.Units.Score = "0-100"

	payload.BestWindow = window
	payload.BestWindow.Start = relocate(window.Start, zone)
	payload.BestWindow.End = relocate(window.End, zone)

	return json.Marshal(payload)
}

// bestWindow scans tonight on a 5-minute grid and returns the longest
// contiguous run of minutes acceptable under the mode, scored by
// duration and moon darkness.
func (g *BestWindowGenerator) bestWindow(noon time.Time, loc Location) (BestWindow, error) {
	const step = 5 * time.Minute

	var bestStart, bestEnd, curStart time.Time
	inRun := false

	for t := noon; t.Before(noon.Add(24 * time.Hour)); t = t.Add(step) {
		ok, err := g.acceptable(t, loc)
		if err != nil {
			return BestWindow{}, err
		}
		switch {
		case ok && !inRun:
			curStart = t
			inRun = true
		case !ok && inRun:
			if t.Sub(curStart) > bestEnd.Sub(bestStart) {
				bestStart, bestEnd = curStart, t
			}
			inRun = false
		}
	}
	if inRun {
		end := noon.Add(24 * time.Hour)
		if end.Sub(curStart) > bestEnd.Sub(bestStart) {
			bestStart, bestEnd = curStart, end
		}
	}

	if bestStart.IsZero() {
		return BestWindow{}, nil
	}

	duration := bestEnd.Sub(bestStart).Hours()
	midpoint := bestStart.Add(bestEnd.Sub(bestStart) / 2)
	illum := moonIllumination(moonAge(midpoint)) * 100

	score := duration / 8 * 70
	if score > 70 {
		score = 70
	}
	score += (100 - illum) / 100 * 30

	start := bestStart.Format(time.RFC3339)
	end := bestEnd.Format(time.RFC3339)
	return BestWindow{
		Start:         &start,
		End:           &end,
		DurationHours: round2(duration),
		Score:         round2(score),
	}, nil
}

func (g *BestWindowGenerator) acceptable(t time.Time, loc Location) (bool, error) {
	sunAlt := sunAltitude(t, loc.Latitude, loc.Longitude)
	moonAlt := moonAltitude(t, loc.Latitude, loc.Longitude)

	switch g.mode {
	case ModeStrict:
		return sunAlt < -(zenithAstronomical-90) && moonAlt < 0, nil
	case ModePractical:
		return sunAlt < -(zenithNautical-90) && moonAlt < 0, nil
	case ModeIllumination:
		if sunAlt >= -(zenithAstronomical - 90) {
			return false, nil
		}
		return moonAlt < 0 || moonIllumination(moonAge(t)) < 0.25, nil
	default:
		return false, fmt.Errorf("unknown best window mode %q", g.mode)
	}
}

func relocate(s *string, zone *time.Location) *string {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return s
	}
	v := t.In(zone).Format(time.RFC3339)
	return &v
}
