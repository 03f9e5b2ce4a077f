// Package timeutil provides absolute-time and local-time-window
// helpers shared by the horizon builder, forecast aligner, and plant
// model.
package timeutil

import "time"

// FloorTo returns t truncated down to the nearest multiple of step,
// anchored at midnight in loc. Unlike time.Time.Truncate (which
// anchors at the Unix epoch in UTC), this respects local calendar
// boundaries, so a 30-minute step floors to :00 or :30 local time
// regardless of the observer's UTC offset.
func FloorTo(t time.Time, step time.Duration, loc *time.Location) time.Time {
	if step <= 0 {
		return t
	}
	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	elapsed := local.Sub(midnight)
	floored := elapsed - elapsed%step
	return midnight.Add(floored)
}

// CeilTo returns t rounded up to the nearest multiple of step,
// anchored at midnight in loc. If t already falls on a boundary it is
// returned unchanged.
func CeilTo(t time.Time, step time.Duration, loc *time.Location) time.Time {
	floored := FloorTo(t, step, loc)
	if floored.Equal(t) {
		return t
	}
	return floored.Add(step)
}

// ClockTime is a time-of-day, minute resolution, independent of any
// particular date.
type ClockTime struct {
	HourOfDay int
	Minute    int
}

// Minutes returns the clock time as minutes since local midnight.
func (c ClockTime) Minutes() int {
	return c.HourOfDay*60 + c.Minute
}

// Window is a local-time-of-day interval that may wrap past midnight
// (e.g. 22:00-06:00), optionally restricted to a set of months.
type Window struct {
	Start  ClockTime
	End    ClockTime
	Months []time.Month // empty means "all months"
}

// Contains reports whether t's local clock time (in loc) falls inside
// the window, honoring midnight wraparound and the month restriction.
func (w Window) Contains(t time.Time, loc *time.Location) bool {
	local := t.In(loc)
	if len(w.Months) > 0 && !monthAllowed(local.Month(), w.Months) {
		return false
	}
	minuteOfDay := local.Hour()*60 + local.Minute()
	start := w.Start.Minutes()
	end := w.End.Minutes()

	if start == end {
		// A window whose start equals its end (including 00:00-00:00)
		// never matches; a full-day window cannot be expressed.
		return false
	}
	if start < end {
		return minuteOfDay >= start && minuteOfDay < end
	}
	// Wraps past midnight.
	return minuteOfDay >= start || minuteOfDay < end
}

func monthAllowed(m time.Month, allowed []time.Month) bool {
	for _, a := range allowed {
		if a == m {
			return true
		}
	}
	return false
}

// Overlap returns the duration during which [aStart, aEnd) and
// [bStart, bEnd) intersect. Returns 0 if they do not overlap.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return 0
	}
	return end.Sub(start)
}
