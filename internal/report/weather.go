package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

const defaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

var hourlyVars = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"cloud_cover",
	"cloud_cover_low",
	"cloud_cover_mid",
	"cloud_cover_high",
	"wind_speed_10m",
	"precipitation_probability",
	"surface_pressure",
}

// WeatherClient fetches hourly forecasts from the Open-Meteo API.
type WeatherClient struct {
	baseURL string
	client  *http.Client
}

// NewWeatherClient creates a client with a sane request timeout.
func NewWeatherClient() *WeatherClient {
	return &WeatherClient{
		baseURL: defaultOpenMeteoURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *WeatherClient) WithBaseURL(u string) *WeatherClient {
	c.baseURL = u
	return c
}

// openMeteoResponse mirrors the fields of the forecast response we use.
type openMeteoResponse struct {
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature2m            []float64 `json:"temperature_2m"`
		RelativeHumidity2m       []float64 `json:"relative_humidity_2m"`
		CloudCover               []float64 `json:"cloud_cover"`
		CloudCoverLow            []float64 `json:"cloud_cover_low"`
		CloudCoverMid            []float64 `json:"cloud_cover_mid"`
		CloudCoverHigh           []float64 `json:"cloud_cover_high"`
		WindSpeed10m             []float64 `json:"wind_speed_10m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		SurfacePressure          []float64 `json:"surface_pressure"`
	} `json:"hourly"`
}

// Fetch retrieves the next forecastHours of hourly data.
func (c *WeatherClient) Fetch(ctx context.Context, loc Location, forecastHours int) (*openMeteoResponse, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.5f", loc.Latitude))
	q.Set("longitude", fmt.Sprintf("%.5f", loc.Longitude))
	q.Set("timezone", loc.Timezone)
	q.Set("forecast_hours", fmt.Sprintf("%d", forecastHours))
	for i, v := range hourlyVars {
		if i == 0 {
			q.Set("hourly", v)
		} else {
			q.Set("hourly", q.Get("hourly")+","+v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("open-meteo status %d: %s", resp.StatusCode, body)
	}

	var parsed openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &parsed, nil
}

// Conditions is the current-conditions summary the job scheduler feeds
// into each target's configuration.
type Conditions struct {
	Pressure         float64 `json:"pressure"`          // bar
	Temperature      float64 `json:"temperature"`       // °C
	RelativeHumidity float64 `json:"relative_humidity"` // fraction 0-1
}

// DefaultConditions is used when the forecast is unavailable.
func DefaultConditions() Conditions {
	return Conditions{Pressure: 1.013, Temperature: 15.0, RelativeHumidity: 0.5}
}

// CurrentConditions returns the first forecast hour as job conditions.
func (c *WeatherClient) CurrentConditions(ctx context.Context, loc Location) (Conditions, error) {
	resp, err := c.Fetch(ctx, loc, 1)
	if err != nil {
		return Conditions{}, err
	}
	h := resp.Hourly
	if len(h.Temperature2m) == 0 || len(h.SurfacePressure) == 0 || len(h.RelativeHumidity2m) == 0 {
		return Conditions{}, fmt.Errorf("forecast response missing hourly data")
	}
	return Conditions{
		Pressure:         h.SurfacePressure[0] / 1000, // hPa to bar
		Temperature:      h.Temperature2m[0],
		RelativeHumidity: h.RelativeHumidity2m[0] / 100,
	}, nil
}

// WeatherGenerator produces the cached hourly forecast report.
type WeatherGenerator struct {
	client        *WeatherClient
	forecastHours int
}

// NewWeatherGenerator creates the generator.
func NewWeatherGenerator(client *WeatherClient) *WeatherGenerator {
	return &WeatherGenerator{client: client, forecastHours: 48}
}

func (g *WeatherGenerator) Generate(ctx context.Context, loc Location) (json.RawMessage, error) {
	resp, err := g.client.Fetch(ctx, loc, g.forecastHours)
	if err != nil {
		return nil, err
	}

	h := resp.Hourly
	type hour struct {
		Time                     string  `json:"time"`
		Temperature              float64 `json:"temperature"`
		RelativeHumidity         float64 `json:"relative_humidity"`
		CloudCover               float64 `json:"cloud_cover"`
		WindSpeed                float64 `json:"wind_speed"`
		PrecipitationProbability float64 `json:"precipitation_probability"`
		SeeingScore              float64 `json:"seeing_score"`
	}

	hours := make([]hour, 0, len(h.Time))
	for i := range h.Time {
		entry := hour{Time: h.Time[i]}
		if i < len(h.Temperature2m) {
			entry.Temperature = h.Temperature2m[i]
		}
		if i < len(h.RelativeHumidity2m) {
			entry.RelativeHumidity = h.RelativeHumidity2m[i]
		}
		if i < len(h.CloudCover) {
			entry.CloudCover = h.CloudCover[i]
		}
		if i < len(h.WindSpeed10m) {
			entry.WindSpeed = h.WindSpeed10m[i]
		}
		if i < len(h.PrecipitationProbability) {
			entry.PrecipitationProbability = h.PrecipitationProbability[i]
		}
		entry.SeeingScore = round2(seeingScore(entry.CloudCover, entry.RelativeHumidity, entry.WindSpeed))
		hours = append(hours, entry)
	}

	payload := struct {
		Location Location `json:"location"`
		Hourly   []hour   `json:"hourly"`
	}{Location: loc, Hourly: hours}

	return json.Marshal(payload)
}

// seeingScore grades an hour for astrophotography on 0-100.
// Clear skies dominate; humidity and wind weigh less.
func seeingScore(cloudCover, humidity, windSpeed float64) float64 {
	cloudFactor := clamp(100-cloudCover, 0, 100)
	humidityFactor := clamp(100-humidity, 0, 100)
	windFactor := clamp(100-windSpeed*2, 0, 100)
	return cloudFactor*0.5 + humidityFactor*0.3 + windFactor*0.2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
