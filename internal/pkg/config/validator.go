// Package config provides validation and fallback loading for the
// pipeline's environment configuration, plus metrics describing it.
package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts standard 5-field cron expressions and descriptors like @daily.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronSchedule validates a cron expression such as "30 5 * * *".
//
// Example:
//
//	if err := ValidateCronSchedule("0 8 * * *"); err != nil {
//	    return fmt.Errorf("DIGEST_CRON_SCHEDULE: %w", err)
//	}
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}

	if _, err := scheduleParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ValidateTimezone validates an IANA timezone name such as "Asia/Kolkata".
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("invalid timezone: cannot be empty")
	}

	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", timezone, err)
	}
	return nil
}

// ValidateIntRange validates that value lies in [min, max].
func ValidateIntRange(value, min, max int) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%d) cannot be greater than max (%d)", min, max)
	}
	if value < min {
		return fmt.Errorf("value %d is below minimum %d", value, min)
	}
	if value > max {
		return fmt.Errorf("value %d exceeds maximum %d", value, max)
	}
	return nil
}

// ValidateFloatRange validates that value lies in [min, max].
func ValidateFloatRange(value, min, max float64) error {
	if value < min || value > max {
		return fmt.Errorf("value %g is outside [%g, %g]", value, min, max)
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is greater than zero.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	return nil
}

// ValidateNonNegativeDuration validates that a duration is zero or more.
// Zero is how pacing and polite delays are switched off.
func ValidateNonNegativeDuration(duration time.Duration) error {
	if duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %v", duration)
	}
	return nil
}

// ValidateHourWindow validates a same-day [start, end] hour window.
func ValidateHourWindow(start, end int) error {
	if err := ValidateIntRange(start, 0, 23); err != nil {
		return fmt.Errorf("start hour: %w", err)
	}
	if err := ValidateIntRange(end, 0, 23); err != nil {
		return fmt.Errorf("end hour: %w", err)
	}
	if start > end {
		return fmt.Errorf("start hour %d is after end hour %d", start, end)
	}
	return nil
}
