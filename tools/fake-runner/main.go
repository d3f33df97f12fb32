// fake-runner stands in for the real observation-planning container
// during manual end-to-end testing of the job scheduler. It reads the
// generated config, sleeps for a configurable duration, writes a fake
// artifact to the output directory, and exits with a configurable code.
//
// Build it into a minimal image and point JOB_IMAGE at it, or run it
// directly while testing a local exec setup:
//
//	SLEEP=2s EXIT_CODE=0 fake-runner
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

func main() {
	configPath := envOr("CONFIG_PATH", "/app/config.yaml")
	outputDir := envOr("OUTPUT_DIR", "/app/out")

	sleep := time.Second
	if v := os.Getenv("SLEEP"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid SLEEP: %v", err)
		}
		sleep = d
	}

	exitCode := 0
	if v := os.Getenv("EXIT_CODE"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &exitCode); err != nil {
			log.Fatalf("invalid EXIT_CODE: %v", err)
		}
	}

	config, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("no config at %s: %v", configPath, err)
	} else {
		log.Printf("config loaded (%d bytes)", len(config))
	}

	log.Printf("simulating work for %s", sleep)
	time.Sleep(sleep)

	artifact := filepath.Join(outputDir, "uptonight-report.txt")
	content := fmt.Sprintf("fake run at %s\nconfig: %s\n", time.Now().UTC().Format(time.RFC3339), configPath)
	if err := os.WriteFile(artifact, []byte(content), 0o644); err != nil {
		log.Printf("could not write artifact: %v", err)
		os.Exit(1)
	}

	fmt.Println("fake-runner: done")
	fmt.Fprintln(os.Stderr, "fake-runner: simulated stderr output")
	os.Exit(exitCode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
