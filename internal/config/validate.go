package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	// DATA_DIR is required, everything shared between workers lives there
	if cfg.DataDir == "" {
		errs = append(errs, ValidationError{
			Field:   "DATA_DIR",
			Message: "required",
		})
	}

	// DATABASE_URL is optional, but must parse when present
	if cfg.DatabaseURL != "" {
		if _, err := url.Parse(cfg.DatabaseURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "DATABASE_URL",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	// A refresher that ticks slower than entries expire leaves cold
	// windows between cycles.
	if cfg.RefreshInterval >= cfg.CacheTTL {
		errs = append(errs, ValidationError{
			Field:   "REFRESH_INTERVAL",
			Message: fmt.Sprintf("must be shorter than CACHE_TTL (%s >= %s)", cfg.RefreshInterval, cfg.CacheTTL),
		})
	}

	if cfg.ScheduleCron != "" {
		if _, err := cron.ParseStandard(cfg.ScheduleCron); err != nil {
			errs = append(errs, ValidationError{
				Field:   "SCHEDULE_CRON",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	// HOST_CONFIG_DIR and HOST_OUTPUT_DIR are only meaningful together
	if (cfg.HostConfigDir == "") != (cfg.HostOutputDir == "") {
		errs = append(errs, ValidationError{
			Field:   "HOST_CONFIG_DIR",
			Message: "HOST_CONFIG_DIR and HOST_OUTPUT_DIR must be set together",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
