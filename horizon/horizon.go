// Package horizon builds the ordered, mixed-resolution time grid the
// MILP is solved over.
package horizon

import (
	"time"

	"github.com/devskill-org/ems-planner/timeutil"
)

// Slot is one contiguous, strictly-positive-duration step of the
// horizon.
type Slot struct {
	Index     int
	Start     time.Time
	End       time.Time
	DurationH float64
}

// Horizon is the ordered slot grid a planner invocation solves over.
type Horizon struct {
	Now   time.Time
	Start time.Time
	Slots []Slot
}

// N returns the number of slots (the MILP's T range is 0..N-1).
func (h *Horizon) N() int {
	return len(h.Slots)
}

// Config describes how to lay out the horizon grid.
type Config struct {
	TimestepMinutes        int // base (coarse) timestep, required, > 0
	HighResTimestepMinutes int // 0 disables the high-res lead-in
	HighResHorizonMinutes  int // ignored when HighResTimestepMinutes == 0
	MinHorizonMinutes      int // floor on total horizon length
	Location               *time.Location
}

// Build constructs the horizon. maxCoverageMinutes is the shortest
// available forecast horizon; the result is truncated to it (but never
// shorter than MinHorizonMinutes, which instead fails the build).
func Build(now time.Time, cfg Config, maxCoverageMinutes int) (*Horizon, error) {
	if maxCoverageMinutes < cfg.MinHorizonMinutes {
		return nil, &CoverageTooShortError{
			MaxCoverageMinutes: maxCoverageMinutes,
			MinHorizonMinutes:  cfg.MinHorizonMinutes,
		}
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	baseStep := time.Duration(cfg.TimestepMinutes) * time.Minute
	useHighRes := cfg.HighResTimestepMinutes > 0 && cfg.HighResHorizonMinutes > 0

	tau0 := baseStep
	if useHighRes {
		tau0 = time.Duration(cfg.HighResTimestepMinutes) * time.Minute
	}

	start := timeutil.FloorTo(now, tau0, loc)
	L := time.Duration(maxCoverageMinutes) * time.Minute
	end := start.Add(L)

	var slots []Slot
	cursor := start

	if useHighRes {
		hiResWindow := time.Duration(cfg.HighResHorizonMinutes) * time.Minute
		hiResEnd := start.Add(hiResWindow)
		if hiResEnd.After(end) {
			hiResEnd = end
		}

		for !cursor.Add(tau0).After(hiResEnd) {
			slots = append(slots, newSlot(len(slots), cursor, cursor.Add(tau0)))
			cursor = cursor.Add(tau0)
		}

		if cursor.Before(end) {
			snap := timeutil.CeilTo(hiResEnd, baseStep, loc)
			if snap.After(end) {
				snap = end
			}
			if snap.After(cursor) {
				// The snap to the next coarse boundary may leave a
				// bridging slot shorter than a regular tau0 step.
				slots = append(slots, newSlot(len(slots), cursor, snap))
				cursor = snap
			}
		}
	}

	for cursor.Before(end) {
		slotEnd := cursor.Add(baseStep)
		if slotEnd.After(end) {
			slotEnd = end
		}
		slots = append(slots, newSlot(len(slots), cursor, slotEnd))
		cursor = slotEnd
	}

	return &Horizon{Now: now, Start: start, Slots: slots}, nil
}

func newSlot(index int, start, end time.Time) Slot {
	return Slot{
		Index:     index,
		Start:     start,
		End:       end,
		DurationH: end.Sub(start).Hours(),
	}
}

// CoverageTooShortError reports that the shortest available forecast
// does not reach MinHorizonMinutes.
type CoverageTooShortError struct {
	MaxCoverageMinutes int
	MinHorizonMinutes  int
}

func (e *CoverageTooShortError) Error() string {
	return "horizon: shortest forecast covers " +
		durationMinutes(e.MaxCoverageMinutes) + " but min_horizon_minutes requires " +
		durationMinutes(e.MinHorizonMinutes)
}

func durationMinutes(m int) string {
	return time.Duration(m * int(time.Minute)).String()
}
