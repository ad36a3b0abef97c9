package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	p := NewPacer(time.Second)

	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacer_EnforcesMinimumInterval(t *testing.T) {
	interval := 40 * time.Millisecond
	p := NewPacer(interval)

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background()))
		stamps = append(stamps, time.Now())
	}

	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "gap %d", i)
	}
}

func TestPacer_Disabled(t *testing.T) {
	p := NewPacer(0)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), p.Interval())
}

func TestPacer_ContextCanceled(t *testing.T) {
	p := NewPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, p.Wait(ctx))
}
