package report

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// HorizonSample is one point on the overnight altitude graph.
type HorizonSample struct {
	Time         string  `json:"time"`
	SunAltitude  float64 `json:"sun_altitude"`
	MoonAltitude float64 `json:"moon_altitude"`
}

// HorizonGenerator produces the overnight sun and moon altitude graph,
// sampled every 15 minutes from local noon to the next noon.
type HorizonGenerator struct {
	clock func() time.Time
}

// NewHorizonGenerator creates the generator.
func NewHorizonGenerator() *HorizonGenerator {
	return &HorizonGenerator{clock: time.Now}
}

func (g *HorizonGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	local := g.clock().In(zone)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, zone)

	const step = 15 * time.Minute
	samples := make([]HorizonSample, 0, 24*4)
	for t := noon; t.Before(noon.Add(24 * time.Hour)); t = t.Add(step) {
		samples = append(samples, HorizonSample{
			Time:         t.Format(time.RFC3339),
			SunAltitude:  round2(sunAltitude(t, loc.Latitude, loc.Longitude)),
			MoonAltitude: round2(moonAltitude(t, loc.Latitude, loc.Longitude)),
		})
	}

	payload := struct {
		Location Location        `json:"location"`
		Samples  []HorizonSample `json:"samples"`
		Units    struct {
			Altitude string `json:"altitude"`
		} `json:"units"`
	}{Location: loc, Samples: samples}
	payload.Units.Altitude = "degrees"

	return json.Marshal(payload)
}
