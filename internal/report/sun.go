package report

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// SunReport is today's sun summary with twilight times.
type SunReport struct {
	Sunrise             *string `json:"sunrise"`
	Sunset              *string `json:"sunset"`
	CivilDuskEnd        *string `json:"civil_dusk_end"`
	NauticalDuskEnd     *string `json:"nautical_dusk_end"`
	AstronomicalDuskEnd *string `json:"astronomical_dusk_end"`
	AstronomicalDawn    *string `json:"astronomical_dawn"`
	TrueNightHours      float64 `json:"true_night_hours"`
}

// SunGenerator produces the sun report.
type SunGenerator struct {
	clock func() time.Time
}

// NewSunGenerator creates the generator.
func NewSunGenerator() *SunGenerator {
	return &SunGenerator{clock: time.Now}
}

func (g *SunGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	now := g.clock()
	// Anchor the scan at local noon so "tonight's" events come first.
	local := now.In(zone)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, zone)

	sunset := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithOfficial, false)
	civilEnd := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithCivil, false)
	nauticalEnd := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithNautical, false)
	astroEnd := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithAstronomical, false)
	astroDawn := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithAstronomical, true)
	sunrise := sunCrossing(noon, loc.Latitude, loc.Longitude, zenithOfficial, true)

	trueNight := 0.0
	if !astroEnd.IsZero() && !astroDawn.IsZero() && astroDawn.After(astroEnd) {
		trueNight = round2(astroDawn.Sub(astroEnd).Hours())
	}

	report := SunReport{
		Sunrise:             localTimeOrNil(sunrise, zone),
		Sunset:              localTimeOrNil(sunset, zone),
		CivilDuskEnd:        localTimeOrNil(civilEnd, zone),
		NauticalDuskEnd:     localTimeOrNil(nauticalEnd, zone),
		AstronomicalDuskEnd: localTimeOrNil(astroEnd, zone),
		AstronomicalDawn:    localTimeOrNil(astroDawn, zone),
		TrueNightHours:      trueNight,
	}

	payload := struct {
		Location Location  `json:"location"`
		Sun      SunReport `json:"sun"`
		Units    struct {
			Times          string `json:"times"`
			TrueNightHours string `json:"true_night_hours"`
		} `json:"units"`
	}{Location: loc, Sun: report}
	payload.Units.Times = "local timezone"
	payload.Units.TrueNightHours = "hours"

	return json.Marshal(payload)
}
