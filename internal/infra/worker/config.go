package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"newsdigest/internal/pkg/config"
)

// Config controls how the digest job is scheduled.
//
// An empty CronSchedule means the job runs once and the process exits.
type Config struct {
	// CronSchedule is a five-field cron expression, e.g. "30 5 * * *".
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// RunTimeout bounds a single digest run.
	RunTimeout time.Duration

	// MetricsPort serves /metrics and /health in schedule mode.
	MetricsPort int
}

// DefaultConfig returns the run-once configuration.
func DefaultConfig() *Config {
	return &Config{
		CronSchedule: "",
		Timezone:     "Asia/Kolkata",
		RunTimeout:   30 * time.Minute,
		MetricsPort:  9090,
	}
}

// Scheduled reports whether the job runs on a cron schedule.
func (c *Config) Scheduled() bool {
	return c.CronSchedule != ""
}

// Validate returns every invalid field joined into one error.
func (c *Config) Validate() error {
	var errs []error

	if c.CronSchedule != "" {
		if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
			errs = append(errs, fmt.Errorf("cron schedule: %w", err))
		}
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	return errors.Join(errs...)
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv reads the scheduling settings. Invalid values fall back
// to their defaults with a warning; loading never fails.
//
// Environment variables:
//   - DIGEST_CRON_SCHEDULE (default: empty, run once)
//   - DIGEST_TIMEZONE (default: Asia/Kolkata)
//   - DIGEST_RUN_TIMEOUT (default: 30m)
//   - METRICS_PORT (default: 9090)
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) *Config {
	cfg := DefaultConfig()
	fallback := false

	note := func(field, warning string, applied bool) {
		if !applied {
			return
		}
		fallback = true
		logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
		if metrics != nil {
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field)
		}
	}

	schedule := config.LoadEnvWithFallback("DIGEST_CRON_SCHEDULE", cfg.CronSchedule, config.ParseString, config.ValidateCronSchedule)
	note("cron_schedule", schedule.Warning, schedule.FallbackApplied)
	cfg.CronSchedule = schedule.Value

	tz := config.LoadEnvWithFallback("DIGEST_TIMEZONE", cfg.Timezone, config.ParseString, config.ValidateTimezone)
	note("timezone", tz.Warning, tz.FallbackApplied)
	cfg.Timezone = tz.Value

	timeout := config.LoadEnvWithFallback("DIGEST_RUN_TIMEOUT", cfg.RunTimeout, time.ParseDuration, config.ValidatePositiveDuration)
	note("run_timeout", timeout.Warning, timeout.FallbackApplied)
	cfg.RunTimeout = timeout.Value

	port := config.LoadEnvWithFallback("METRICS_PORT", cfg.MetricsPort, strconv.Atoi, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	note("metrics_port", port.Warning, port.FallbackApplied)
	cfg.MetricsPort = port.Value

	if metrics != nil {
		metrics.RecordLoadTimestamp()
		metrics.SetFallbackActive(fallback)
	}
	return cfg
}
