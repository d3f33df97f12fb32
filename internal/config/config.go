package config

import (
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Config holds all configuration for the myastroboard application.
// Values are loaded from environment variables.
type Config struct {
	HTTPAddr    string `json:"http_addr"`
	DatabaseURL string `json:"database_url,omitempty"`
	RedisAddr   string `json:"redis_addr,omitempty"`

	DataDir   string `json:"data_dir"`
	ConfigDir string `json:"config_dir"`
	OutputDir string `json:"output_dir"`

	// Host-side equivalents of ConfigDir/OutputDir for docker-in-docker
	// volume mounts. Empty when not containerized.
	HostConfigDir string `json:"host_config_dir,omitempty"`
	HostOutputDir string `json:"host_output_dir,omitempty"`

	CacheTTL    time.Duration `json:"-"`
	CacheTTLStr string        `json:"cache_ttl"`

	WeatherCacheTTL    time.Duration `json:"-"`
	WeatherCacheTTLStr string        `json:"weather_cache_ttl"`

	// RefreshInterval must be strictly less than CacheTTL so a healthy
	// refresher keeps every entry permanently warm.
	RefreshInterval    time.Duration `json:"-"`
	RefreshIntervalStr string        `json:"refresh_interval"`

	ScheduleInterval    time.Duration `json:"-"`
	ScheduleIntervalStr string        `json:"schedule_interval"`
	ScheduleCron        string        `json:"schedule_cron,omitempty"`

	SchedulePollInterval    time.Duration `json:"-"`
	SchedulePollIntervalStr string        `json:"schedule_poll_interval"`

	JobRunTimeout    time.Duration `json:"-"`
	JobRunTimeoutStr string        `json:"job_run_timeout"`
	JobImage         string        `json:"job_image"`

	DBOpTimeout    time.Duration `json:"-"`
	DBOpTimeoutStr string        `json:"db_op_timeout"`

	HTTPShutdownTimeout    time.Duration `json:"-"`
	HTTPShutdownTimeoutStr string        `json:"http_shutdown_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		HTTPAddr:                os.Getenv("HTTP_ADDR"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		DataDir:                 os.Getenv("DATA_DIR"),
		ConfigDir:               os.Getenv("CONFIG_DIR"),
		OutputDir:               os.Getenv("OUTPUT_DIR"),
		HostConfigDir:           os.Getenv("HOST_CONFIG_DIR"),
		HostOutputDir:           os.Getenv("HOST_OUTPUT_DIR"),
		CacheTTLStr:             os.Getenv("CACHE_TTL"),
		WeatherCacheTTLStr:      os.Getenv("WEATHER_CACHE_TTL"),
		RefreshIntervalStr:      os.Getenv("REFRESH_INTERVAL"),
		ScheduleIntervalStr:     os.Getenv("SCHEDULE_INTERVAL"),
		ScheduleCron:            os.Getenv("SCHEDULE_CRON"),
		SchedulePollIntervalStr: os.Getenv("SCHEDULE_POLL_INTERVAL"),
		JobRunTimeoutStr:        os.Getenv("JOB_RUN_TIMEOUT"),
		JobImage:                os.Getenv("JOB_IMAGE"),
		DBOpTimeoutStr:          os.Getenv("DB_OP_TIMEOUT"),
		HTTPShutdownTimeoutStr:  os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		MetricsEnabled:          os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:             os.Getenv("METRICS_PATH"),
		MetricsPort:             os.Getenv("METRICS_PORT"),
	}

	applyDefault(&cfg.HTTPAddr, ":8080")
	applyDefault(&cfg.DataDir, "./data")
	applyDefault(&cfg.ConfigDir, "./data/job_config")
	applyDefault(&cfg.OutputDir, "./data/job_output")
	applyDefault(&cfg.JobImage, "mawinkler/uptonight:latest")
	applyDefault(&cfg.MetricsPath, "/metrics")
	applyDefault(&cfg.MetricsPort, "9090")

	cfg.CacheTTL = parseDurationOr(cfg.CacheTTLStr, 30*time.Minute)
	cfg.WeatherCacheTTL = parseDurationOr(cfg.WeatherCacheTTLStr, time.Hour)
	cfg.RefreshInterval = parseDurationOr(cfg.RefreshIntervalStr, 25*time.Minute)
	cfg.ScheduleInterval = parseDurationOr(cfg.ScheduleIntervalStr, 7201*time.Second)
	cfg.SchedulePollInterval = parseDurationOr(cfg.SchedulePollIntervalStr, time.Minute)
	cfg.JobRunTimeout = parseDurationOr(cfg.JobRunTimeoutStr, 10*time.Minute)
	cfg.DBOpTimeout = parseDurationOr(cfg.DBOpTimeoutStr, 5*time.Second)
	cfg.HTTPShutdownTimeout = parseDurationOr(cfg.HTTPShutdownTimeoutStr, 10*time.Second)

	cfg.CacheTTLStr = cfg.CacheTTL.String()
	cfg.WeatherCacheTTLStr = cfg.WeatherCacheTTL.String()
	cfg.RefreshIntervalStr = cfg.RefreshInterval.String()
	cfg.ScheduleIntervalStr = cfg.ScheduleInterval.String()
	cfg.SchedulePollIntervalStr = cfg.SchedulePollInterval.String()
	cfg.JobRunTimeoutStr = cfg.JobRunTimeout.String()
	cfg.DBOpTimeoutStr = cfg.DBOpTimeout.String()
	cfg.HTTPShutdownTimeoutStr = cfg.HTTPShutdownTimeout.String()

	return cfg
}

// MaskedJSON serializes the configuration with credentials masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := c
	if masked.DatabaseURL != "" {
		masked.DatabaseURL = maskURL(masked.DatabaseURL)
	}
	return json.MarshalIndent(masked, "", "  ")
}

func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, has := u.User.Password(); has {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}

func applyDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
