package jobsched

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/WorldOfGZ/myastroboard/internal/report"
	"github.com/WorldOfGZ/myastroboard/internal/settings"
)

func TestFormatDMS(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{48.866669, "48d52m0.01s"},
		{2.33333, "2d19m59.99s"},
		{-17.8851, "-17d53m6.36s"},
		{0.5, "0d30m0.00s"},
	}

	for _, tc := range cases {
		if got := formatDMS(tc.value); got != tc.want {
			t.Errorf("formatDMS(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestSafeTargetName(t *testing.T) {
	cases := map[string]string{
		"Messier":          "Messier",
		"Herschel 400":     "Herschel_400",
		"custom/list name": "custom_list_name",
	}
	for in, want := range cases {
		if got := safeTargetName(in); got != want {
			t.Errorf("safeTargetName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildTargetConfig(t *testing.T) {
	cfg := settings.Defaults()
	cfg.BucketList = []string{"M31"}
	cond := report.Conditions{Pressure: 1.005, Temperature: 12.5, RelativeHumidity: 0.6}

	raw, err := buildTargetConfig(cfg, "Messier", cond)
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	var doc targetConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse generated yaml: %v", err)
	}

	if doc.TargetList != "targets/Messier" {
		t.Errorf("target_list = %q", doc.TargetList)
	}
	if doc.OutputDir != "out" {
		t.Errorf("output_dir = %q", doc.OutputDir)
	}
	if !strings.HasSuffix(doc.Location.Latitude, "s") || !strings.Contains(doc.Location.Latitude, "d") {
		t.Errorf("latitude not in DMS format: %q", doc.Location.Latitude)
	}
	if doc.Location.Timezone != "Europe/Paris" {
		t.Errorf("timezone = %q", doc.Location.Timezone)
	}
	if doc.Environment.Pressure != 1.005 || doc.Environment.RelativeHumidity != 0.6 {
		t.Errorf("environment = %+v", doc.Environment)
	}
	if len(doc.BucketList) != 1 || doc.BucketList[0] != "M31" {
		t.Errorf("bucket_list = %v", doc.BucketList)
	}
	if doc.Constraints != nil {
		t.Error("constraints emitted although use_constraints is false")
	}
}

func TestBuildTargetConfig_Constraints(t *testing.T) {
	cfg := settings.Defaults()
	cfg.UseConstraints = true

	raw, err := buildTargetConfig(cfg, "Messier", report.DefaultConditions())
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	var doc targetConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse generated yaml: %v", err)
	}
	if doc.Constraints == nil {
		t.Fatal("constraints missing with use_constraints enabled")
	}
	if doc.Constraints.MoonSeparationMin != 45 {
		t.Errorf("moon separation = %v, want 45", doc.Constraints.MoonSeparationMin)
	}
}

func TestBuildTargetConfig_Horizon(t *testing.T) {
	cfg := settings.Defaults()
	cfg.Horizon = settings.Horizon{
		StepSize: 5,
		AnchorPoints: []settings.HorizonPoint{
			{Alt: 20, Az: 0},
			{Alt: 35, Az: 90},
		},
	}

	raw, err := buildTargetConfig(cfg, "Messier", report.DefaultConditions())
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	var doc targetConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse generated yaml: %v", err)
	}
	if doc.Horizon == nil {
		t.Fatal("horizon missing from generated config")
	}
	if doc.Horizon.StepSize != 5 {
		t.Errorf("step_size = %v, want 5", doc.Horizon.StepSize)
	}
	if len(doc.Horizon.AnchorPoints) != 2 || doc.Horizon.AnchorPoints[1].Az != 90 {
		t.Errorf("anchor_points = %+v", doc.Horizon.AnchorPoints)
	}
	if !strings.Contains(string(raw), "step_size") {
		t.Errorf("horizon keys not snake_case:\n%s", raw)
	}
}

func TestBuildTargetConfig_OmitsEmptyHorizon(t *testing.T) {
	cfg := settings.Defaults()
	cfg.Horizon = settings.Horizon{}

	raw, err := buildTargetConfig(cfg, "Messier", report.DefaultConditions())
	if err != nil {
		t.Fatalf("build config: %v", err)
	}

	var doc targetConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse generated yaml: %v", err)
	}
	if doc.Horizon != nil {
		t.Errorf("horizon emitted although unset: %+v", doc.Horizon)
	}
}

func TestBuildTargetConfig_RejectsUnsetLocation(t *testing.T) {
	cfg := settings.Defaults()
	cfg.Location.Latitude = 0
	cfg.Location.Longitude = 0

	if _, err := buildTargetConfig(cfg, "Messier", report.DefaultConditions()); err == nil {
		t.Fatal("zero coordinates accepted")
	}
}
