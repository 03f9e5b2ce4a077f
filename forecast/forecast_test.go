package forecast

import (
	"testing"
	"time"

	"github.com/devskill-org/ems-planner/horizon"
)

func mkSlots(start time.Time, n int, step time.Duration) []horizon.Slot {
	slots := make([]horizon.Slot, n)
	cursor := start
	for i := 0; i < n; i++ {
		end := cursor.Add(step)
		slots[i] = horizon.Slot{Index: i, Start: cursor, End: end, DurationH: step.Hours()}
		cursor = end
	}
	return slots
}

func TestAlignConstantValue(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	slots := mkSlots(start, 1, time.Hour)
	intervals := []Interval{{Start: start, End: start.Add(time.Hour), Value: 1.0}}

	got, err := Align(intervals, slots, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if len(got) != 1 || got[0] != 1.0 {
		t.Errorf("Align() = %v, want [1.0]", got)
	}
}

func TestAlignTimeWeightedMean(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	slots := mkSlots(start, 1, time.Hour)
	// First 30 min at value 10, second 30 min at value 20: mean = 15.
	intervals := []Interval{
		{Start: start, End: start.Add(30 * time.Minute), Value: 10},
		{Start: start.Add(30 * time.Minute), End: start.Add(time.Hour), Value: 20},
	}

	got, err := Align(intervals, slots, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if got[0] != 15 {
		t.Errorf("Align() = %v, want [15]", got)
	}
}

func TestAlignSlot0Override(t *testing.T) {
	now := time.Date(2026, 7, 31, 10, 5, 0, 0, time.UTC)
	slotStart := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC) // precedes now
	slots := []horizon.Slot{{Index: 0, Start: slotStart, End: slotStart.Add(time.Hour), DurationH: 1}}

	// Forecast only covers from "now" onward, so slot 0 is not fully covered.
	intervals := []Interval{{Start: now, End: now.Add(time.Hour), Value: 5}}

	override := 99.0
	got, err := Align(intervals, slots, &override)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if got[0] != 99.0 {
		t.Errorf("Align() slot0 = %v, want override 99.0", got[0])
	}
}

func TestAlignCoverageErrorWithoutOverride(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	slots := mkSlots(start, 2, time.Hour)
	// Only covers the first slot.
	intervals := []Interval{{Start: start, End: start.Add(time.Hour), Value: 1}}

	_, err := Align(intervals, slots, nil)
	if err == nil {
		t.Fatal("expected AlignmentCoverageError, got nil")
	}
	cerr, ok := err.(*AlignmentCoverageError)
	if !ok {
		t.Fatalf("error type = %T, want *AlignmentCoverageError", err)
	}
	if cerr.SlotIndex != 1 {
		t.Errorf("SlotIndex = %d, want 1", cerr.SlotIndex)
	}
}

func TestAlignSubMinuteGapTolerated(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	slots := mkSlots(start, 1, time.Hour)
	// A 30-second gap in the middle of the slot should still be treated as covered.
	intervals := []Interval{
		{Start: start, End: start.Add(29 * time.Minute), Value: 10},
		{Start: start.Add(29*time.Minute + 30*time.Second), End: start.Add(time.Hour), Value: 10},
	}

	got, err := Align(intervals, slots, nil)
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if got[0] != 10 {
		t.Errorf("Align() = %v, want [10]", got)
	}
}

func TestValidateContiguous(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)

	valid := []Interval{
		{Start: start, End: start.Add(time.Hour), Value: 1},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), Value: 2},
	}
	if err := ValidateContiguous(valid); err != nil {
		t.Errorf("ValidateContiguous(valid) error = %v", err)
	}

	overlapping := []Interval{
		{Start: start, End: start.Add(time.Hour), Value: 1},
		{Start: start.Add(30 * time.Minute), End: start.Add(2 * time.Hour), Value: 2},
	}
	if err := ValidateContiguous(overlapping); err == nil {
		t.Error("ValidateContiguous(overlapping) expected error, got nil")
	}

	gapped := []Interval{
		{Start: start, End: start.Add(time.Hour), Value: 1},
		{Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Value: 2},
	}
	if err := ValidateContiguous(gapped); err == nil {
		t.Error("ValidateContiguous(gapped) expected error, got nil")
	}
}
