package domain

import (
	"github.com/goccy/go-json"
)

// CacheKey identifies one cached astronomical report.
type CacheKey string

const (
	KeyMoonReport             CacheKey = "moon_report"
	KeySunReport              CacheKey = "sun_report"
	KeyDarkWindow             CacheKey = "dark_window"
	KeyMoonPlanner            CacheKey = "moon_planner"
	KeyBestWindowStrict       CacheKey = "best_window_strict"
	KeyBestWindowPractical    CacheKey = "best_window_practical"
	KeyBestWindowIllumination CacheKey = "best_window_illumination"
	KeySolarEclipse           CacheKey = "solar_eclipse"
	KeyLunarEclipse           CacheKey = "lunar_eclipse"
	KeyHorizonGraph           CacheKey = "horizon_graph"
	KeyWeather                CacheKey = "weather"
)

// AllCacheKeys returns every report kind in refresh order.
// The order is stable so refresh cycles and status reports are deterministic.
func AllCacheKeys() []CacheKey {
	return []CacheKey{
		KeyMoonReport,
		KeySunReport,
		KeyDarkWindow,
		KeyMoonPlanner,
		KeyBestWindowStrict,
		KeyBestWindowPractical,
		KeyBestWindowIllumination,
		KeySolarEclipse,
		KeyLunarEclipse,
		KeyHorizonGraph,
		KeyWeather,
	}
}

// IsValidCacheKey reports whether s names a known report kind.
func IsValidCacheKey(s string) bool {
	for _, k := range AllCacheKeys() {
		if string(k) == s {
			return true
		}
	}
	return false
}

// CacheEntry is one cached report with its write timestamp.
// Data == nil means the entry is empty; an empty entry is never valid
// regardless of its timestamp.
type CacheEntry struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Empty reports whether the entry holds no data.
func (e CacheEntry) Empty() bool {
	return len(e.Data) == 0 || string(e.Data) == "null"
}

// CacheDocument is the on-disk shape of the shared cache file:
// one entry per report kind.
type CacheDocument map[CacheKey]CacheEntry
