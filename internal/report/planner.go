package report

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// PlannerNight summarizes one upcoming night for the 7-night planner.
type PlannerNight struct {
	Date         string  `json:"date"`
	PhaseName    string  `json:"phase_name"`
	Illumination float64 `json:"illumination"`
	DarkHours    float64 `json:"dark_hours"`
	Rating       string  `json:"rating"`
}

// PlannerGenerator produces the next-7-nights moon planner.
type PlannerGenerator struct {
	clock func() time.Time
}

// NewPlannerGenerator creates the generator.
func NewPlannerGenerator() *PlannerGenerator {
	return &PlannerGenerator{clock: time.Now}
}

func (g *PlannerGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	zone, err := loadZone(loc.Timezone)
	if err != nil {
		return nil, err
	}

	now := g.clock().In(zone)
	nights := make([]PlannerNight, 0, 7)

	for day := 0; day < 7; day++ {
		noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, zone).AddDate(0, 0, day)
		midnight := noon.Add(12 * time.Hour)

		age := moonAge(midnight)
		illum := moonIllumination(age) * 100
		dark := darkHoursForNight(noon, loc.Latitude, loc.Longitude)

		nights = append(nights, PlannerNight{
			Date:         noon.Format("2006-01-02"),
			PhaseName:    moonPhaseName(age),
			Illumination: round2(illum),
			DarkHours:    round2(dark),
			Rating:       rateNight(illum, dark),
		})
	}

	payload := struct {
		Location    Location       `json:"location"`
		Next7Nights []PlannerNight `json:"next_7_nights"`
		Units       struct {
			DarkHours    string `json:"dark_hours"`
			Illumination string `json:"illumination"`
		} `json:"units"`
	}{Location: loc, Next7Nights: nights}
	payload.Units.DarkHours = "hours"
	payload.Units.Illumination = "percent"

	return json.Marshal(payload)
}

// darkHoursForNight sums the moonless astronomical-dark time between one
// local noon and the next, in hours.
func darkHoursForNight(noon time.Time, lat, lon float64) float64 {
	const step = 10 * time.Minute
	dark := 0.0
	for t := noon; t.Before(noon.Add(24 * time.Hour)); t = t.Add(step) {
		if sunAltitude(t, lat, lon) < -(zenithAstronomical-90) && moonAltitude(t, lat, lon) < 0 {
			dark += step.Hours()
		}
	}
	return dark
}

func rateNight(illumination, darkHours float64) string {
	switch {
	case darkHours >= 4 && illumination < 20:
		return "excellent"
	case darkHours >= 2 && illumination < 50:
		return "good"
	case darkHours >= 1:
		return "fair"
	default:
		return "poor"
	}
}
