package report

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"
)

// MoonReport is the nightly moon summary.
type MoonReport struct {
	PhaseName          string  `json:"phase_name"`
	AgeDays            float64 `json:"age_days"`
	Illumination       float64 `json:"illumination"`
	Moonrise           *string `json:"moonrise"`
	Moonset            *string `json:"moonset"`
	NextDarkNightStart *string `json:"next_dark_night_start"`
	NextDarkNightEnd   *string `json:"next_dark_night_end"`
}

// MoonGenerator produces the moon report.
type MoonGenerator struct {
	clock func() time.Time
}

// NewMoonGenerator creates the generator.
func NewMoonGenerator() *MoonGenerator {
	return &MoonGenerator{clock: time.Now}
}

func (g *MoonGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	report, err := g.compute(loc)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Location Location   `json:"location"`
		Moon     MoonReport `json:"moon"`
	}{Location: loc, Moon: report}

	return json.Marshal(payload)
}

func (g *MoonGenerator) compute(loc Location) (MoonReport, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return MoonReport{}, err
	}

	now := g.clock()
	age := moonAge(now)

	rise, set := moonEvents(now, loc.Latitude, loc.Longitude)
	darkStart, darkEnd := nextDarkWindow(now, loc.Latitude, loc.Longitude)

	return MoonReport{
		PhaseName:          moonPhaseName(age),
		AgeDays:            round2(age),
		Illumination:       round2(moonIllumination(age) * 100),
		Moonrise:           localTimeOrNil(rise, zone),
		Moonset:            localTimeOrNil(set, zone),
		NextDarkNightStart: localTimeOrNil(darkStart, zone),
		NextDarkNightEnd:   localTimeOrNil(darkEnd, zone),
	}, nil
}

// moonEvents finds the next moonrise and moonset after from by scanning
// altitude sign changes on a 1-minute grid.
func moonEvents(from time.Time, lat, lon float64) (rise, set time.Time) {
	prev := moonAltitude(from, lat, lon)
	for m := 1; m <= 24*60; m++ {
		t := from.Add(time.Duration(m) * time.Minute)
		alt := moonAltitude(t, lat, lon)
		if rise.IsZero() && prev < 0 && alt >= 0 {
			rise = t
		}
		if set.IsZero() && prev > 0 && alt <= 0 {
			set = t
		}
		if !rise.IsZero() && !set.IsZero() {
			break
		}
		prev = alt
	}
	return rise, set
}

// nextDarkWindow finds the next interval, within 7 days, where the sun
// is below astronomical twilight and the moon is below the horizon.
func nextDarkWindow(from time.Time, lat, lon float64) (start, end time.Time) {
	const step = 5 * time.Minute
	inWindow := false
	for t := from; t.Before(from.Add(7 * 24 * time.Hour)); t = t.Add(step) {
		dark := sunAltitude(t, lat, lon) < -(zenithAstronomical-90) && moonAltitude(t, lat, lon) < 0
		if dark && !inWindow {
			start = t
			inWindow = true
		}
		if !dark && inWindow {
			return start, t
		}
	}
	if inWindow {
		return start, from.Add(7 * 24 * time.Hour)
	}
	return time.Time{}, time.Time{}
}

// DarkWindowGenerator produces the standalone dark-window report.
type DarkWindowGenerator struct {
	clock func() time.Time
}

// NewDarkWindowGenerator creates the generator.
func NewDarkWindowGenerator() *DarkWindowGenerator {
	return &DarkWindowGenerator{clock: time.Now}
}

func (g *DarkWindowGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	start, end := nextDarkWindow(g.clock(), loc.Latitude, loc.Longitude)

	payload := struct {
		NextDarkNight struct {
			Start *string `json:"start"`
			End   *string `json:"end"`
		} `json:"next_dark_night"`
	}{}
	payload.NextDarkNight.Start = localTimeOrNil(start, zone)
	payload.NextDarkNight.End = localTimeOrNil(end, zone)

	return json.Marshal(payload)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
