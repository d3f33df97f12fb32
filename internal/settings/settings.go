// Package settings persists the user-editable dashboard configuration
// (observing location, selected catalogues, feature flags, constraints).
//
// The file is re-read on every load so a worker that did not serve the
// update still observes it; the leader's refresh cycle picks up location
// changes through the change detector.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/WorldOfGZ/myastroboard/internal/domain"
)

const fileName = "config.json"

// Location is the observing site.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`
}

// HorizonPoint is one anchor of the custom horizon profile, in degrees.
type HorizonPoint struct {
	Alt float64 `json:"alt" yaml:"alt"`
	Az  float64 `json:"az" yaml:"az"`
}

// Horizon is the user's custom horizon profile. The external job uses it
// to mask targets hidden behind local obstructions.
type Horizon struct {
	StepSize     float64        `json:"step_size" yaml:"step_size"`
	AnchorPoints []HorizonPoint `json:"anchor_points" yaml:"anchor_points"`
}

// Empty reports whether no horizon profile is configured.
func (h Horizon) Empty() bool {
	return h.StepSize == 0 && len(h.AnchorPoints) == 0
}

// Constraints bound the external job's target selection.
type Constraints struct {
	AltitudeConstraintMin             float64 `json:"altitude_constraint_min" yaml:"altitude_constraint_min"`
	AltitudeConstraintMax             float64 `json:"altitude_constraint_max" yaml:"altitude_constraint_max"`
	AirmassConstraint                 float64 `json:"airmass_constraint" yaml:"airmass_constraint"`
	SizeConstraintMin                 float64 `json:"size_constraint_min" yaml:"size_constraint_min"`
	SizeConstraintMax                 float64 `json:"size_constraint_max" yaml:"size_constraint_max"`
	MoonSeparationMin                 float64 `json:"moon_separation_min" yaml:"moon_separation_min"`
	MoonSeparationUseIllumination     bool    `json:"moon_separation_use_illumination" yaml:"moon_separation_use_illumination"`
	FractionOfTimeObservableThreshold float64 `json:"fraction_of_time_observable_threshold" yaml:"fraction_of_time_observable_threshold"`
	MaxNumberWithinThreshold          int     `json:"max_number_within_threshold" yaml:"max_number_within_threshold"`
	NorthToEastCCW                    bool    `json:"north_to_east_ccw" yaml:"north_to_east_ccw"`
}

// Settings is the complete user configuration document.
type Settings struct {
	Location           Location        `json:"location"`
	SelectedCatalogues []string        `json:"selected_catalogues"`
	MinAltitude        float64         `json:"min_altitude"`
	UseConstraints     bool            `json:"use_constraints"`
	Features           map[string]bool `json:"features"`
	Constraints        Constraints     `json:"constraints"`
	Horizon            Horizon         `json:"horizon"`
	BucketList         []string        `json:"bucket_list"`
	DoneList           []string        `json:"done_list"`
	CustomTargets      []string        `json:"custom_targets"`
}

// Defaults returns the configuration used before the user saves one.
func Defaults() Settings {
	return Settings{
		Location: Location{
			Name:      "Paris",
			Latitude:  48.866669,
			Longitude: 2.33333,
			Elevation: 35,
			Timezone:  "Europe/Paris",
		},
		SelectedCatalogues: []string{"Messier"},
		MinAltitude:        30,
		Features: map[string]bool{
			"horizon": false,
			"objects": true,
			"bodies":  true,
			"comets":  true,
			"alttime": true,
		},
		Constraints: Constraints{
			AltitudeConstraintMin:             30,
			AltitudeConstraintMax:             80,
			AirmassConstraint:                 2,
			SizeConstraintMin:                 10,
			SizeConstraintMax:                 300,
			MoonSeparationMin:                 45,
			MoonSeparationUseIllumination:     true,
			FractionOfTimeObservableThreshold: 0.5,
			MaxNumberWithinThreshold:          60,
		},
		Horizon: Horizon{StepSize: 5},
	}
}

// Signature extracts the location-change signature from s.
func (s Settings) Signature() domain.LocationSignature {
	return domain.LocationSignature{
		Latitude:  domain.Float(s.Location.Latitude),
		Longitude: domain.Float(s.Location.Longitude),
		Elevation: domain.Float(s.Location.Elevation),
		Timezone:  s.Location.Timezone,
	}
}

// Store reads and writes the settings file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// Load returns the persisted settings, or defaults when the file is
// missing. A corrupt file is an error: silently reverting a user's
// configuration to defaults would move their observing site.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	cfg := Defaults()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return cfg, nil
}

// Save persists cfg.
func (s *Store) Save(cfg Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
