package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "daily at 05:30", schedule: "30 5 * * *", wantErr: false},
		{name: "every 15 minutes", schedule: "*/15 * * * *", wantErr: false},
		{name: "weekdays", schedule: "0 8 * * 1-5", wantErr: false},
		{name: "descriptor", schedule: "@daily", wantErr: false},
		{name: "empty", schedule: "", wantErr: true},
		{name: "too few fields", schedule: "0 8 *", wantErr: true},
		{name: "out of range hour", schedule: "0 25 * * *", wantErr: true},
		{name: "garbage", schedule: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("Asia/Kolkata"))
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.Error(t, ValidateTimezone(""))

	err := ValidateTimezone("Mars/Olympus")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(3, 1, 10))
	assert.NoError(t, ValidateIntRange(1, 1, 10))
	assert.NoError(t, ValidateIntRange(10, 1, 10))
	assert.Error(t, ValidateIntRange(0, 1, 10))
	assert.Error(t, ValidateIntRange(11, 1, 10))
	assert.Error(t, ValidateIntRange(5, 10, 1))
}

func TestValidateFloatRange(t *testing.T) {
	assert.NoError(t, ValidateFloatRange(0.7, 0, 2))
	assert.Error(t, ValidateFloatRange(-0.1, 0, 2))
	assert.Error(t, ValidateFloatRange(2.5, 0, 2))
}

func TestValidateDurations(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Second))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))

	assert.NoError(t, ValidateNonNegativeDuration(0))
	assert.Error(t, ValidateNonNegativeDuration(-time.Millisecond))
}

func TestValidateHourWindow(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{name: "default window", start: 0, end: 19, wantErr: false},
		{name: "single hour", start: 7, end: 7, wantErr: false},
		{name: "inverted", start: 20, end: 5, wantErr: true},
		{name: "start negative", start: -1, end: 5, wantErr: true},
		{name: "end too large", start: 0, end: 24, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHourWindow(tt.start, tt.end)
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}
