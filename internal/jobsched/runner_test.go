package jobsched

import (
	"errors"
	"testing"
	"time"
)

func TestRunResult_Failed(t *testing.T) {
	cases := []struct {
		name   string
		result RunResult
		want   bool
	}{
		{"clean exit", RunResult{ExitCode: 0}, false},
		{"nonzero exit", RunResult{ExitCode: 2}, true},
		{"timed out", RunResult{TimedOut: true}, true},
		{"invocation error", RunResult{Err: errors.New("docker not found"), ExitCode: -1}, true},
		{"slow but clean", RunResult{ExitCode: 0, Duration: 5 * time.Minute}, false},
	}
	for _, tc := range cases {
		if got := tc.result.Failed(); got != tc.want {
			t.Errorf("%s: Failed() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDockerRunner_PathTranslation(t *testing.T) {
	r := NewDockerRunner("test:latest").
		WithHostPaths("/data/job_config", "/srv/astro/config", "/data/job_output", "/srv/astro/out")

	cases := []struct {
		path, local, host, want string
	}{
		{"/data/job_config/Messier.yaml", "/data/job_config", "/srv/astro/config", "/srv/astro/config/Messier.yaml"},
		{"/data/job_output/Messier", "/data/job_output", "/srv/astro/out", "/srv/astro/out/Messier"},
		{"/elsewhere/file.yaml", "/data/job_config", "/srv/astro/config", "/elsewhere/file.yaml"},
	}
	for _, tc := range cases {
		if got := r.translate(tc.path, tc.local, tc.host); got != tc.want {
			t.Errorf("translate(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestDockerRunner_NoTranslationWithoutHostPaths(t *testing.T) {
	r := NewDockerRunner("test:latest")
	if got := r.translate("/data/job_config/Messier.yaml", r.localConfig, r.hostConfigDir); got != "/data/job_config/Messier.yaml" {
		t.Errorf("translate = %q, want path unchanged", got)
	}
}
