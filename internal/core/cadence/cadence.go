// Package cadence computes the next run instant of a refresh schedule
package cadence

import (
	"strconv"
	"strings"
	"time"

	perr "supplysync/internal/platform/errors"
)

// Freq is how often a schedule repeats
type Freq string

// Supported frequencies
const (
	Daily   Freq = "daily"
	Weekly  Freq = "weekly"
	Monthly Freq = "monthly"
	None    Freq = "none"
)

// ParseFreq validates a frequency string
func ParseFreq(s string) (Freq, error) {
	switch f := Freq(strings.ToLower(strings.TrimSpace(s))); f {
	case Daily, Weekly, Monthly, None:
		return f, nil
	case "":
		return None, nil
	default:
		return "", perr.InvalidArgf("unknown schedule frequency %q", s)
	}
}

// ParseAt parses a 24h "HH:MM" clock time
func ParseAt(at string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return 0, 0, perr.InvalidArgf("schedule time %q is not HH:MM", at)
	}
	hour, err1 := strconv.Atoi(hs)
	minute, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 || len(ms) != 2 {
		return 0, 0, perr.InvalidArgf("schedule time %q is not HH:MM", at)
	}
	return hour, minute, nil
}

// Next returns the next run after now, or nil when the schedule does not repeat.
// Today at `at` wins while it is still in the future; otherwise the next occurrence per freq
func Next(freq Freq, at string, now time.Time) (*time.Time, error) {
	h, m, err := ParseAt(at)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, time.UTC)
	if today.After(now) {
		return &today, nil
	}

	var next time.Time
	switch freq {
	case Daily:
		next = today.AddDate(0, 0, 1)
	case Weekly:
		next = today.AddDate(0, 0, 7)
	case Monthly:
		next = addMonthClamped(today)
	case None, "":
		return nil, nil
	default:
		return nil, perr.InvalidArgf("unknown schedule frequency %q", string(freq))
	}
	return &next, nil
}

// addMonthClamped moves t one calendar month ahead, clamping to the month's last day
func addMonthClamped(t time.Time) time.Time {
	y, mo, d := t.Date()
	firstOfNext := time.Date(y, mo+1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC)
	last := firstOfNext.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d, t.Hour(), t.Minute(), 0, 0, time.UTC)
}
