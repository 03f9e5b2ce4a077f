package timeutil

import (
	"testing"
	"time"
)

func TestFloorTo(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		in   time.Time
		step time.Duration
		want time.Time
	}{
		{
			name: "floors to 30 minute boundary",
			in:   time.Date(2026, 7, 31, 12, 3, 15, 0, loc),
			step: 30 * time.Minute,
			want: time.Date(2026, 7, 31, 12, 0, 0, 0, loc),
		},
		{
			name: "already on boundary stays put",
			in:   time.Date(2026, 7, 31, 13, 30, 0, 0, loc),
			step: 30 * time.Minute,
			want: time.Date(2026, 7, 31, 13, 30, 0, 0, loc),
		},
		{
			name: "5 minute step",
			in:   time.Date(2026, 7, 31, 12, 3, 15, 0, loc),
			step: 5 * time.Minute,
			want: time.Date(2026, 7, 31, 12, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FloorTo(tt.in, tt.step, loc)
			if !got.Equal(tt.want) {
				t.Errorf("FloorTo(%v, %v) = %v, want %v", tt.in, tt.step, got, tt.want)
			}
		})
	}
}

func TestCeilTo(t *testing.T) {
	loc := time.UTC
	in := time.Date(2026, 7, 31, 13, 3, 15, 0, loc)
	got := CeilTo(in, 30*time.Minute, loc)
	want := time.Date(2026, 7, 31, 13, 30, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("CeilTo() = %v, want %v", got, want)
	}

	// On-boundary input is unchanged.
	onBoundary := time.Date(2026, 7, 31, 13, 30, 0, 0, loc)
	if got := CeilTo(onBoundary, 30*time.Minute, loc); !got.Equal(onBoundary) {
		t.Errorf("CeilTo(on boundary) = %v, want %v", got, onBoundary)
	}
}

func TestWindowContains(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name string
		w    Window
		t    time.Time
		want bool
	}{
		{
			name: "simple evening window",
			w:    Window{Start: ClockTime{17, 0}, End: ClockTime{20, 0}},
			t:    time.Date(2026, 7, 31, 18, 30, 0, 0, loc),
			want: true,
		},
		{
			name: "just before simple window",
			w:    Window{Start: ClockTime{17, 0}, End: ClockTime{20, 0}},
			t:    time.Date(2026, 7, 31, 16, 59, 0, 0, loc),
			want: false,
		},
		{
			name: "wraps past midnight, inside late segment",
			w:    Window{Start: ClockTime{22, 0}, End: ClockTime{6, 0}},
			t:    time.Date(2026, 7, 31, 23, 0, 0, 0, loc),
			want: true,
		},
		{
			name: "wraps past midnight, inside early segment",
			w:    Window{Start: ClockTime{22, 0}, End: ClockTime{6, 0}},
			t:    time.Date(2026, 7, 31, 3, 0, 0, 0, loc),
			want: true,
		},
		{
			name: "wraps past midnight, outside",
			w:    Window{Start: ClockTime{22, 0}, End: ClockTime{6, 0}},
			t:    time.Date(2026, 7, 31, 12, 0, 0, 0, loc),
			want: false,
		},
		{
			name: "month-restricted, wrong month",
			w:    Window{Start: ClockTime{17, 0}, End: ClockTime{20, 0}, Months: []time.Month{time.December}},
			t:    time.Date(2026, 7, 31, 18, 0, 0, 0, loc),
			want: false,
		},
		{
			name: "month-restricted, right month",
			w:    Window{Start: ClockTime{17, 0}, End: ClockTime{20, 0}, Months: []time.Month{time.July}},
			t:    time.Date(2026, 7, 31, 18, 0, 0, 0, loc),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Contains(tt.t, loc); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlap(t *testing.T) {
	loc := time.UTC
	a0 := time.Date(2026, 7, 31, 12, 0, 0, 0, loc)
	a1 := time.Date(2026, 7, 31, 13, 0, 0, 0, loc)
	b0 := time.Date(2026, 7, 31, 12, 30, 0, 0, loc)
	b1 := time.Date(2026, 7, 31, 14, 0, 0, 0, loc)

	got := Overlap(a0, a1, b0, b1)
	want := 30 * time.Minute
	if got != want {
		t.Errorf("Overlap() = %v, want %v", got, want)
	}

	// Disjoint intervals overlap for 0.
	c0 := time.Date(2026, 7, 31, 14, 0, 0, 0, loc)
	c1 := time.Date(2026, 7, 31, 15, 0, 0, 0, loc)
	if got := Overlap(a0, a1, c0, c1); got != 0 {
		t.Errorf("Overlap(disjoint) = %v, want 0", got)
	}
}
