package jobsched

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"time"
)

// RunResult is the outcome of one external job run.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error // invocation error (runner missing, etc.), not job failure
	Duration time.Duration
}

// Failed reports whether the run should count as a failure.
func (r RunResult) Failed() bool {
	return r.Err != nil || r.TimedOut || r.ExitCode != 0
}

// JobRunner executes one external job against a config file, writing
// artifacts under outputDir. Implementations must honor the timeout:
// a runaway job is killed and reported, never waited on indefinitely.
type JobRunner interface {
	Run(ctx context.Context, configPath, outputDir string, timeout time.Duration) RunResult
}

// Preparer is an optional JobRunner extension invoked once per cycle
// (e.g. pulling a container image) before any target runs.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// DockerRunner runs the job as a docker container, mounting the target
// config read-only and the output directory read-write.
type DockerRunner struct {
	image string

	// hostConfigDir/hostOutputDir translate container-local paths to
	// host paths for docker-in-docker deployments. Empty means the
	// local paths are already host paths.
	hostConfigDir string
	hostOutputDir string
	localConfig   string
	localOutput   string
}

// NewDockerRunner creates a runner for image.
func NewDockerRunner(image string) *DockerRunner {
	return &DockerRunner{image: image}
}

// WithHostPaths configures docker-in-docker path translation: paths
// under localConfigDir/localOutputDir are rewritten to the equivalent
// paths under hostConfigDir/hostOutputDir before mounting.
func (r *DockerRunner) WithHostPaths(localConfigDir, hostConfigDir, localOutputDir, hostOutputDir string) *DockerRunner {
	r.localConfig = localConfigDir
	r.hostConfigDir = hostConfigDir
	r.localOutput = localOutputDir
	r.hostOutputDir = hostOutputDir
	return r
}

// Prepare pulls the image so the first target's run does not pay for it.
// Pull failures are non-fatal; a cached image may still be present.
func (r *DockerRunner) Prepare(ctx context.Context) error {
	pullCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(pullCtx, "docker", "pull", r.image)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("jobsched: image pull failed (continuing with cached image): %v: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// Run executes the container with a hard timeout.
func (r *DockerRunner) Run(ctx context.Context, configPath, outputDir string, timeout time.Duration) RunResult {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "docker", "run", "--rm",
		"-v", r.translate(configPath, r.localConfig, r.hostConfigDir)+":/app/config.yaml:ro",
		"-v", r.translate(outputDir, r.localOutput, r.hostOutputDir)+":/app/out",
		r.image,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Err = fmt.Errorf("invoke docker: %w", err)
			result.ExitCode = -1
		}
	}
	return result
}

func (r *DockerRunner) translate(path, localRoot, hostRoot string) string {
	if localRoot == "" || hostRoot == "" {
		return path
	}
	if len(path) >= len(localRoot) && path[:len(localRoot)] == localRoot {
		return hostRoot + path[len(localRoot):]
	}
	return path
}
