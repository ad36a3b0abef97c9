package rewrite

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "newsdigest/internal/pkg/config"
	"newsdigest/pkg/config"
)

// Config controls one Rewriter. It is bound at construction and never mutated.
type Config struct {
	// PrimaryModel is tried first, FallbackModel after all primary attempts failed.
	PrimaryModel  string
	FallbackModel string

	// MaxRetries is the number of attempts per model.
	MaxRetries int

	// RetryDelay is the pause after a failed attempt.
	RetryDelay time.Duration

	// Timeout bounds one request.
	Timeout time.Duration

	MaxOutputTokens int
	Temperature     float64

	// MinCallInterval is the minimum spacing between consecutive outbound calls.
	MinCallInterval time.Duration

	// BatchSize is a hint for callers that chunk their article lists.
	BatchSize int

	// StopSequences are passed to the backend. The completion excludes them,
	// so the default "]" is usually restored by the repair stage.
	StopSequences []string

	// RequireCleanFinish skips candidates whose finish reason is not STOP.
	RequireCleanFinish bool

	// DebugDumpPath receives the raw payload when no candidate had text.
	// Empty disables the dump.
	DebugDumpPath string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PrimaryModel:    "gemini-2.5-pro",
		FallbackModel:   "gemini-2.5-flash",
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
		Timeout:         45 * time.Second,
		MaxOutputTokens: 2048,
		Temperature:     0.7,
		MinCallInterval: time.Second,
		BatchSize:       10,
		StopSequences:   []string{"]"},
		DebugDumpPath:   "gemini_debug.json",
	}
}

// LoadConfigFromEnv overlays REWRITE_* environment variables on DefaultConfig.
//
// Environment variables:
//   - REWRITE_PRIMARY_MODEL, REWRITE_FALLBACK_MODEL
//   - REWRITE_MAX_RETRIES (default: 3)
//   - REWRITE_RETRY_DELAY (default: 2s)
//   - REWRITE_TIMEOUT (default: 45s)
//   - REWRITE_MAX_OUTPUT_TOKENS (default: 2048)
//   - REWRITE_TEMPERATURE (default: 0.7)
//   - REWRITE_MIN_CALL_INTERVAL (default: 1s)
//   - REWRITE_BATCH_SIZE (default: 10)
//   - REWRITE_STOP_SEQUENCES (comma-separated, default: "]")
//   - REWRITE_REQUIRE_CLEAN_FINISH (default: false)
//   - REWRITE_DEBUG_DUMP (default: gemini_debug.json)
func LoadConfigFromEnv() Config {
	d := DefaultConfig()
	return Config{
		PrimaryModel:       config.GetEnvString("REWRITE_PRIMARY_MODEL", d.PrimaryModel),
		FallbackModel:      config.GetEnvString("REWRITE_FALLBACK_MODEL", d.FallbackModel),
		MaxRetries:         config.GetEnvInt("REWRITE_MAX_RETRIES", d.MaxRetries),
		RetryDelay:         config.GetEnvDuration("REWRITE_RETRY_DELAY", d.RetryDelay),
		Timeout:            config.GetEnvDuration("REWRITE_TIMEOUT", d.Timeout),
		MaxOutputTokens:    config.GetEnvInt("REWRITE_MAX_OUTPUT_TOKENS", d.MaxOutputTokens),
		Temperature:        config.GetEnvFloat("REWRITE_TEMPERATURE", d.Temperature),
		MinCallInterval:    config.GetEnvDuration("REWRITE_MIN_CALL_INTERVAL", d.MinCallInterval),
		BatchSize:          config.GetEnvInt("REWRITE_BATCH_SIZE", d.BatchSize),
		StopSequences:      config.GetEnvStringList("REWRITE_STOP_SEQUENCES", d.StopSequences),
		RequireCleanFinish: config.GetEnvBool("REWRITE_REQUIRE_CLEAN_FINISH", d.RequireCleanFinish),
		DebugDumpPath:      config.GetEnvString("REWRITE_DEBUG_DUMP", d.DebugDumpPath),
	}
}

// Models returns the model tiers in the order they are tried.
// An empty fallback, or one equal to the primary, is skipped.
func (c Config) Models() []string {
	models := []string{c.PrimaryModel}
	if c.FallbackModel != "" && c.FallbackModel != c.PrimaryModel {
		models = append(models, c.FallbackModel)
	}
	return models
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.PrimaryModel == "" {
		errs = append(errs, errors.New("primary model is required"))
	}
	if err := pkgconfig.ValidateIntRange(c.MaxRetries, 1, 10); err != nil {
		errs = append(errs, fmt.Errorf("max retries: %w", err))
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.RetryDelay); err != nil {
		errs = append(errs, fmt.Errorf("retry delay: %w", err))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout: %w", err))
	}
	if c.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("max output tokens must be positive, got %d", c.MaxOutputTokens))
	}
	if err := pkgconfig.ValidateFloatRange(c.Temperature, 0, 2); err != nil {
		errs = append(errs, fmt.Errorf("temperature: %w", err))
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.MinCallInterval); err != nil {
		errs = append(errs, fmt.Errorf("min call interval: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.BatchSize, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("batch size: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
