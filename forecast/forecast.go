// Package forecast projects interval-valued forecasts (price, power)
// onto a horizon's slots by time-weighted averaging, honoring the
// MPC slot-0 realtime-override convention.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/devskill-org/ems-planner/horizon"
	"github.com/devskill-org/ems-planner/timeutil"
)

// coverageTolerance is the sub-minute gap allowance between adjacent
// forecast intervals.
const coverageTolerance = 60 * time.Second

// Interval is a half-open [Start, End) time range carrying a single
// scalar value — a price (currency/kWh) or a power (kW) depending on
// context. PowerInterval and PriceInterval below name the two uses.
type Interval struct {
	Start time.Time
	End   time.Time
	Value float64
}

// PowerInterval is a forecast power value (kW) over a time range.
type PowerInterval = Interval

// PriceInterval is a forecast price value (currency/kWh) over a time range.
type PriceInterval = Interval

// ValidateContiguous checks that intervals are sorted, non-overlapping,
// gapless (within coverageTolerance), and carry no infinite values —
// the contract §3 "Forecast interval" places on any source resolver
// result before it reaches Align.
func ValidateContiguous(intervals []Interval) error {
	for i, iv := range intervals {
		if math.IsInf(iv.Value, 0) {
			return fmt.Errorf("forecast: interval %d has infinite value", i)
		}
		if !iv.End.After(iv.Start) {
			return fmt.Errorf("forecast: interval %d has non-positive duration (%v to %v)", i, iv.Start, iv.End)
		}
		if i == 0 {
			continue
		}
		prev := intervals[i-1]
		gap := iv.Start.Sub(prev.End)
		if gap < 0 {
			return fmt.Errorf("forecast: interval %d overlaps interval %d", i, i-1)
		}
		if gap > coverageTolerance {
			return fmt.Errorf("forecast: gap of %v between interval %d and %d exceeds tolerance", gap, i-1, i)
		}
	}
	return nil
}

// Align projects intervals onto slots, producing one value per slot.
// If slot 0 is not covered by intervals (because it precedes "now"),
// firstSlotOverride — when non-nil — supplies its value instead of
// failing.
func Align(intervals []Interval, slots []horizon.Slot, firstSlotOverride *float64) ([]float64, error) {
	out := make([]float64, len(slots))

	for i, s := range slots {
		slotDur := s.End.Sub(s.Start)

		var weighted float64
		var covered time.Duration
		for _, iv := range intervals {
			ov := timeutil.Overlap(s.Start, s.End, iv.Start, iv.End)
			if ov <= 0 {
				continue
			}
			weighted += iv.Value * ov.Seconds()
			covered += ov
		}

		gap := slotDur - covered
		if gap > coverageTolerance {
			if i == 0 && firstSlotOverride != nil {
				out[0] = *firstSlotOverride
				continue
			}
			return nil, &AlignmentCoverageError{
				SlotIndex:       i,
				SlotStart:       s.Start,
				SlotEnd:         s.End,
				CoveredSeconds:  covered.Seconds(),
				RequiredSeconds: slotDur.Seconds(),
			}
		}

		// Dividing by the covered duration (rather than the slot's)
		// keeps the mean exact when a tolerated sub-minute gap leaves
		// the slot marginally under-covered.
		if covered <= 0 {
			out[i] = 0
			continue
		}
		out[i] = weighted / covered.Seconds()
	}

	return out, nil
}

// AlignmentCoverageError reports that a horizon slot is not fully
// covered by the forecast's intervals and no slot-0 override applies.
type AlignmentCoverageError struct {
	SlotIndex       int
	SlotStart       time.Time
	SlotEnd         time.Time
	CoveredSeconds  float64
	RequiredSeconds float64
}

func (e *AlignmentCoverageError) Error() string {
	return fmt.Sprintf(
		"forecast: slot %d (%s to %s) covered %.0fs of required %.0fs",
		e.SlotIndex, e.SlotStart.Format(time.RFC3339), e.SlotEnd.Format(time.RFC3339),
		e.CoveredSeconds, e.RequiredSeconds,
	)
}
