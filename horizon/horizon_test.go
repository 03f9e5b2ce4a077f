package horizon

import (
	"testing"
	"time"
)

func TestBuildSingleFlatSlot(t *testing.T) {
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	cfg := Config{TimestepMinutes: 60, MinHorizonMinutes: 60, Location: time.UTC}

	h, err := Build(now, cfg, 60)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(h.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(h.Slots))
	}
	if h.Slots[0].DurationH != 1.0 {
		t.Errorf("DurationH = %v, want 1.0", h.Slots[0].DurationH)
	}
	if !h.Start.Equal(time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want 10:00", h.Start)
	}
}

// TestBuildMultiResolutionHorizon exercises a 5-minute lead-in hour
// snapping onto a 30-minute coarse grid from an off-boundary start.
func TestBuildMultiResolutionHorizon(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 3, 15, 0, time.UTC)
	cfg := Config{
		TimestepMinutes:        30,
		HighResTimestepMinutes: 5,
		HighResHorizonMinutes:  60,
		MinHorizonMinutes:      180,
		Location:               time.UTC,
	}

	h, err := Build(now, cfg, 180)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantStart := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	if !h.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", h.Start, wantStart)
	}

	// Twelve 5-minute slots from 12:00 to 13:00.
	for i := 0; i < 12; i++ {
		s := h.Slots[i]
		if s.DurationH*60 != 5 {
			t.Errorf("slot %d duration = %v min, want 5", i, s.DurationH*60)
		}
	}
	if !h.Slots[11].End.Equal(time.Date(2026, 7, 31, 13, 0, 0, 0, time.UTC)) {
		t.Errorf("slot 11 end = %v, want 13:00", h.Slots[11].End)
	}

	// Then 30-minute slots to 15:00.
	for i := 12; i < len(h.Slots); i++ {
		s := h.Slots[i]
		if s.DurationH*60 != 30 {
			t.Errorf("slot %d duration = %v min, want 30", i, s.DurationH*60)
		}
	}
	last := h.Slots[len(h.Slots)-1]
	if !last.End.Equal(time.Date(2026, 7, 31, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("last slot end = %v, want 15:00", last.End)
	}

	assertContiguous(t, h)
}

func TestBuildCoverageTooShort(t *testing.T) {
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	cfg := Config{TimestepMinutes: 60, MinHorizonMinutes: 180, Location: time.UTC}

	_, err := Build(now, cfg, 90)
	if err == nil {
		t.Fatal("expected CoverageTooShortError, got nil")
	}
	var cerr *CoverageTooShortError
	if !asCoverageTooShort(err, &cerr) {
		t.Fatalf("error = %v, want *CoverageTooShortError", err)
	}
}

func asCoverageTooShort(err error, target **CoverageTooShortError) bool {
	if e, ok := err.(*CoverageTooShortError); ok {
		*target = e
		return true
	}
	return false
}

func TestBuildLastSlotShortenedToFitCoverage(t *testing.T) {
	now := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	cfg := Config{TimestepMinutes: 60, MinHorizonMinutes: 60, Location: time.UTC}

	h, err := Build(now, cfg, 90)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(h.Slots) != 2 {
		t.Fatalf("len(Slots) = %d, want 2", len(h.Slots))
	}
	if h.Slots[0].DurationH != 1.0 {
		t.Errorf("slot 0 duration = %v, want 1.0", h.Slots[0].DurationH)
	}
	if h.Slots[1].DurationH != 0.5 {
		t.Errorf("slot 1 duration = %v, want 0.5", h.Slots[1].DurationH)
	}
	assertContiguous(t, h)
}

func TestBuildIdempotent(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 3, 15, 0, time.UTC)
	cfg := Config{
		TimestepMinutes:        30,
		HighResTimestepMinutes: 5,
		HighResHorizonMinutes:  60,
		MinHorizonMinutes:      180,
		Location:               time.UTC,
	}

	a, err := Build(now, cfg, 180)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b, err := Build(now, cfg, 180)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(a.Slots) != len(b.Slots) {
		t.Fatalf("len mismatch: %d vs %d", len(a.Slots), len(b.Slots))
	}
	for i := range a.Slots {
		if a.Slots[i] != b.Slots[i] {
			t.Errorf("slot %d differs: %+v vs %+v", i, a.Slots[i], b.Slots[i])
		}
	}
}

func assertContiguous(t *testing.T, h *Horizon) {
	t.Helper()
	for i, s := range h.Slots {
		if s.Index != i {
			t.Errorf("slot %d has Index %d", i, s.Index)
		}
		if !s.End.After(s.Start) {
			t.Errorf("slot %d has non-positive duration: %v -> %v", i, s.Start, s.End)
		}
		if i > 0 && !h.Slots[i-1].End.Equal(s.Start) {
			t.Errorf("slot %d does not start where slot %d ends: %v != %v", i, i-1, s.Start, h.Slots[i-1].End)
		}
	}
}
