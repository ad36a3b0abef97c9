package fetch

import "time"

// Window is a closed interval of publication times.
type Window struct {
	Start time.Time
	End   time.Time
}

// TodayWindow returns [startHour:00, endHour:00] of the day containing now,
// evaluated in loc.
func TodayWindow(now time.Time, loc *time.Location, startHour, endHour int) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	return Window{
		Start: time.Date(y, m, d, startHour, 0, 0, 0, loc),
		End:   time.Date(y, m, d, endHour, 0, 0, 0, loc),
	}
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
