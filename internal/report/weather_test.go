package report

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/testutil"
)

const forecastFixture = `{
	"hourly": {
		"time": ["2026-03-01T20:00", "2026-03-01T21:00"],
		"temperature_2m": [8.5, 7.9],
		"relative_humidity_2m": [72, 80],
		"cloud_cover": [10, 90],
		"cloud_cover_low": [5, 80],
		"cloud_cover_mid": [5, 10],
		"cloud_cover_high": [0, 0],
		"wind_speed_10m": [12, 20],
		"precipitation_probability": [0, 40],
		"surface_pressure": [1015.2, 1014.8]
	}
}`

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("latitude") == "" {
			t.Error("latitude query parameter missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastFixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherClient_CurrentConditions(t *testing.T) {
	srv := fixtureServer(t)
	client := NewWeatherClient().WithBaseURL(srv.URL)

	cond, err := client.CurrentConditions(testutil.TestContext(t), Location{Latitude: 48.87, Longitude: 2.33})
	if err != nil {
		t.Fatalf("current conditions: %v", err)
	}

	// hPa converts to bar, percent humidity to a fraction.
	if math.Abs(cond.Pressure-1.0152) > 0.0001 {
		t.Errorf("pressure = %v, want 1.0152 bar", cond.Pressure)
	}
	if cond.Temperature != 8.5 {
		t.Errorf("temperature = %v", cond.Temperature)
	}
	if math.Abs(cond.RelativeHumidity-0.72) > 0.0001 {
		t.Errorf("humidity = %v, want 0.72", cond.RelativeHumidity)
	}
}

func TestWeatherClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := NewWeatherClient().WithBaseURL(srv.URL)
	if _, err := client.CurrentConditions(testutil.TestContext(t), Location{}); err == nil {
		t.Fatal("server error not propagated")
	}
}

func TestWeatherGenerator_SeeingScores(t *testing.T) {
	srv := fixtureServer(t)
	client := NewWeatherClient().WithBaseURL(srv.URL)
	g := NewWeatherGenerator(client)

	raw, err := g.Generate(testutil.TestContext(t), Location{Name: "Paris", Latitude: 48.87, Longitude: 2.33})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var payload struct {
		Location Location `json:"location"`
		Hourly   []struct {
			Time        string  `json:"time"`
			CloudCover  float64 `json:"cloud_cover"`
			SeeingScore float64 `json:"seeing_score"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}

	if payload.Location.Name != "Paris" {
		t.Errorf("location = %+v", payload.Location)
	}
	if len(payload.Hourly) != 2 {
		t.Fatalf("hours = %d, want 2", len(payload.Hourly))
	}

	clear, overcast := payload.Hourly[0], payload.Hourly[1]
	if clear.SeeingScore <= overcast.SeeingScore {
		t.Errorf("clear hour scored %v, overcast hour %v; clear sky must score higher",
			clear.SeeingScore, overcast.SeeingScore)
	}
	// 10% clouds, 72% humidity, 12 km/h wind:
	// 90*0.5 + 28*0.3 + 76*0.2 = 68.6
	if math.Abs(clear.SeeingScore-68.6) > 0.01 {
		t.Errorf("seeing score = %v, want 68.6", clear.SeeingScore)
	}
}

func TestSeeingScore_Clamped(t *testing.T) {
	if got := seeingScore(100, 100, 100); got != 0 {
		t.Errorf("worst case score = %v, want 0", got)
	}
	if got := seeingScore(0, 0, 0); got != 100 {
		t.Errorf("best case score = %v, want 100", got)
	}
}
