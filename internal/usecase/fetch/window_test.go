package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayWindow(t *testing.T) {
	// 20:30 UTC on the 9th is already the 10th in IST.
	now := time.Date(2026, 3, 9, 20, 30, 0, 0, time.UTC)
	w := TodayWindow(now, testLoc, 0, 19)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, testLoc), w.Start)
	assert.Equal(t, time.Date(2026, 3, 10, 19, 0, 0, 0, testLoc), w.End)
}

func TestWindow_Contains(t *testing.T) {
	w := TodayWindow(testNow, testLoc, 0, 19)

	assert.True(t, w.Contains(*at(0, 0)), "start is inclusive")
	assert.True(t, w.Contains(*at(19, 0)), "end is inclusive")
	assert.True(t, w.Contains(at(12, 0).UTC()), "zone does not matter")
	assert.False(t, w.Contains(*at(20, 0)))
	assert.False(t, w.Contains(*at(23, -1)))
}
