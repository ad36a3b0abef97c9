package rewrite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini-2.5-pro", cfg.PrimaryModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.FallbackModel)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 2048, cfg.MaxOutputTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, time.Second, cfg.MinCallInterval)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, []string{"]"}, cfg.StopSequences)
	assert.False(t, cfg.RequireCleanFinish)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("REWRITE_PRIMARY_MODEL", "model-a")
	t.Setenv("REWRITE_FALLBACK_MODEL", "model-b")
	t.Setenv("REWRITE_MAX_RETRIES", "5")
	t.Setenv("REWRITE_RETRY_DELAY", "250ms")
	t.Setenv("REWRITE_TIMEOUT", "10s")
	t.Setenv("REWRITE_TEMPERATURE", "0.2")
	t.Setenv("REWRITE_STOP_SEQUENCES", "],  END ,")
	t.Setenv("REWRITE_REQUIRE_CLEAN_FINISH", "true")
	t.Setenv("REWRITE_DEBUG_DUMP", "/tmp/dump.json")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, "model-a", cfg.PrimaryModel)
	assert.Equal(t, "model-b", cfg.FallbackModel)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, []string{"]", "END"}, cfg.StopSequences)
	assert.True(t, cfg.RequireCleanFinish)
	assert.Equal(t, "/tmp/dump.json", cfg.DebugDumpPath)
	assert.Equal(t, 2048, cfg.MaxOutputTokens, "unset keys keep defaults")
}

func TestLoadConfigFromEnv_InvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("REWRITE_MAX_RETRIES", "many")
	t.Setenv("REWRITE_TIMEOUT", "soon")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestConfig_Models(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		fallback string
		want     []string
	}{
		{name: "both tiers", primary: "a", fallback: "b", want: []string{"a", "b"}},
		{name: "no fallback", primary: "a", fallback: "", want: []string{"a"}},
		{name: "same model", primary: "a", fallback: "a", want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{PrimaryModel: tt.primary, FallbackModel: tt.fallback}
			assert.Equal(t, tt.want, cfg.Models())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero retry delay", mutate: func(c *Config) { c.RetryDelay = 0 }},
		{name: "zero call interval", mutate: func(c *Config) { c.MinCallInterval = 0 }},
		{name: "missing primary", mutate: func(c *Config) { c.PrimaryModel = "" }, wantErr: true},
		{name: "zero retries", mutate: func(c *Config) { c.MaxRetries = 0 }, wantErr: true},
		{name: "too many retries", mutate: func(c *Config) { c.MaxRetries = 11 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.RetryDelay = -time.Second }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "zero tokens", mutate: func(c *Config) { c.MaxOutputTokens = 0 }, wantErr: true},
		{name: "hot temperature", mutate: func(c *Config) { c.Temperature = 2.5 }, wantErr: true},
		{name: "batch too large", mutate: func(c *Config) { c.BatchSize = 51 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "err = %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_ValidateReportsAllFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PrimaryModel = ""
	cfg.MaxRetries = 0
	cfg.Timeout = 0

	err := cfg.Validate()
	assert.ErrorContains(t, err, "primary model")
	assert.ErrorContains(t, err, "max retries")
	assert.ErrorContains(t, err, "timeout")
}
