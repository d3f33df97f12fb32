package jobsched

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
)

// targetConfig is the YAML document the external job runner consumes,
// generated per target per cycle.
type targetConfig struct {
	TargetList      string          `yaml:"target_list"`
	OutputDir       string          `yaml:"output_dir"`
	LiveMode        bool            `yaml:"live_mode"`
	OutputDatestamp bool            `yaml:"output_datestamp"`
	Features        map[string]bool `yaml:"features"`
	Location        struct {
		Longitude string  `yaml:"longitude"`
		Latitude  string  `yaml:"latitude"`
		Elevation float64 `yaml:"elevation"`
		Timezone  string  `yaml:"timezone"`
	} `yaml:"location"`
	Environment struct {
		Pressure         float64 `yaml:"pressure"`
		Temperature      float64 `yaml:"temperature"`
		RelativeHumidity float64 `yaml:"relative_humidity"`
	} `yaml:"environment"`
	Constraints   *settings.Constraints `yaml:"constraints,omitempty"`
	Horizon       *settings.Horizon     `yaml:"horizon,omitempty"`
	BucketList    []string              `yaml:"bucket_list,omitempty"`
	DoneList      []string              `yaml:"done_list,omitempty"`
	CustomTargets []string              `yaml:"custom_targets,omitempty"`
}

// buildTargetConfig generates the runner configuration for one target.
// Zero coordinates mean the user never configured a location; running
// the job there would produce garbage, so it is an error.
func buildTargetConfig(cfg settings.Settings, target string, cond report.Conditions) ([]byte, error) {
	loc := cfg.Location
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return nil, fmt.Errorf("location coordinates must be configured before running jobs")
	}

	tz := loc.Timezone
	if tz == "" {
		tz = "UTC"
	}

	features := cfg.Features
	if features == nil {
		features = map[string]bool{
			"horizon": true, "objects": true, "bodies": true, "comets": true, "alttime": true,
		}
	}

	doc := targetConfig{
		TargetList: "targets/" + target,
		OutputDir:  "out",
		Features:   features,
	}
	doc.Location.Longitude = formatDMS(loc.Longitude)
	doc.Location.Latitude = formatDMS(loc.Latitude)
	doc.Location.Elevation = loc.Elevation
	doc.Location.Timezone = tz
	doc.Environment.Pressure = cond.Pressure
	doc.Environment.Temperature = cond.Temperature
	doc.Environment.RelativeHumidity = cond.RelativeHumidity

	if cfg.UseConstraints {
		constraints := cfg.Constraints
		doc.Constraints = &constraints
	}
	if !cfg.Horizon.Empty() {
		horizon := cfg.Horizon
		doc.Horizon = &horizon
	}
	doc.BucketList = cfg.BucketList
	doc.DoneList = cfg.DoneList
	doc.CustomTargets = cfg.CustomTargets

	return yaml.Marshal(doc)
}

// formatDMS converts decimal degrees to the runner's DMS coordinate
// format, e.g. 48.866669 -> "48d52m0.01s", -2.1 -> "-2d6m0.00s".
func formatDMS(value float64) string {
	abs := math.Abs(value)
	degrees := int(abs)
	minutesFloat := (abs - float64(degrees)) * 60
	minutes := int(minutesFloat)
	seconds := (minutesFloat - float64(minutes)) * 60

	s := fmt.Sprintf("%dd%dm%.2fs", degrees, minutes, seconds)
	if value < 0 {
		return "-" + s
	}
	return s
}

// safeTargetName makes a target name usable as a path component.
func safeTargetName(target string) string {
	s := strings.ReplaceAll(target, " ", "_")
	return strings.ReplaceAll(s, "/", "_")
}
