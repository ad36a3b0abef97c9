package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadResult is the outcome of loading one configuration value.
// When the environment value failed validation, Value holds the default,
// FallbackApplied is set and Warning explains what was rejected.
type LoadResult[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnvWithFallback reads envKey, parses it and validates it. Unset or empty
// variables yield the default silently; parse or validation failures yield the
// default with a warning. It never fails.
//
// Example:
//
//	res := LoadEnvWithFallback("DIGEST_TIMEZONE", "Asia/Kolkata", ParseString, ValidateTimezone)
//	if res.FallbackApplied {
//	    logger.Warn("configuration fallback", slog.String("warning", res.Warning))
//	}
func LoadEnvWithFallback[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) LoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validator != nil {
		err = validator(value)
	}
	if err != nil {
		return LoadResult[T]{
			Value:           defaultValue,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue),
			FallbackApplied: true,
		}
	}
	return LoadResult[T]{Value: value}
}

// ParseString is the identity parser for string settings.
func ParseString(s string) (string, error) {
	return s, nil
}
