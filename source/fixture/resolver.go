package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/devskill-org/ems-planner/forecast"
	"github.com/devskill-org/ems-planner/source"
)

// Resolver implements source.Resolver by replaying a captured Data
// document. It never performs I/O beyond the initial Load.
type Resolver struct {
	Data *Data
	Now  time.Time
}

// New returns a Resolver replaying data, anchored at now for the
// history-profile synthesizer's sun-position calculations.
func New(data *Data, now time.Time) *Resolver {
	return &Resolver{Data: data, Now: now}
}

func (r *Resolver) ResolveScalar(_ context.Context, ref source.EntityRef) (float64, error) {
	v, ok := r.Data.Scalars[string(ref)]
	if !ok {
		return 0, &source.DataSourceError{Ref: ref, Op: "ResolveScalar", Err: fmt.Errorf("no scalar recorded for %q", ref)}
	}
	return v, nil
}

func (r *Resolver) ResolvePowerForecast(_ context.Context, ref source.EntityRef, minHorizonMinutes int) ([]forecast.PowerInterval, error) {
	return r.resolveIntervals(ref, "ResolvePowerForecast", r.Data.PowerForecasts, minHorizonMinutes)
}

func (r *Resolver) ResolvePriceForecast(_ context.Context, ref source.EntityRef, minHorizonMinutes int) ([]forecast.PriceInterval, error) {
	return r.resolveIntervals(ref, "ResolvePriceForecast", r.Data.PriceForecasts, minHorizonMinutes)
}

func (r *Resolver) resolveIntervals(ref source.EntityRef, op string, table map[string][]Interval, minHorizonMinutes int) ([]forecast.Interval, error) {
	raw, ok := table[string(ref)]
	if !ok || len(raw) == 0 {
		return nil, &source.DataSourceError{Ref: ref, Op: op, Err: fmt.Errorf("no forecast recorded for %q", ref)}
	}

	out := make([]forecast.Interval, len(raw))
	for i, iv := range raw {
		out[i] = iv.toForecast()
	}

	if err := forecast.ValidateContiguous(out); err != nil {
		return nil, &source.DataSourceError{Ref: ref, Op: op, Err: err}
	}

	covered := out[len(out)-1].End.Sub(out[0].Start)
	if covered < time.Duration(minHorizonMinutes)*time.Minute {
		return nil, &source.DataSourceError{
			Ref: ref, Op: op,
			Err: fmt.Errorf("forecast covers %v, need at least %d minutes", covered, minHorizonMinutes),
		}
	}

	return out, nil
}

// ResolveHistoryProfile synthesizes a PV-shaped power forecast for ref
// from a sun-altitude model; any forecast recorded for ref is not
// consulted. days and intervalMinutes are accepted for interface conformance but
// a single deterministic altitude curve is used rather than averaging
// real historical samples, since fixtures carry no sample history.
func (r *Resolver) ResolveHistoryProfile(_ context.Context, ref source.EntityRef, _ int, intervalMinutes, horizonHours int) ([]forecast.PowerInterval, error) {
	peak, ok := r.Data.PVPeakKW[string(ref)]
	if !ok {
		return nil, &source.DataSourceError{Ref: ref, Op: "ResolveHistoryProfile", Err: fmt.Errorf("no pv_peak_kw recorded for %q", ref)}
	}

	return synthesizeSolarProfile(r.Now, r.Data.Latitude, r.Data.Longitude, peak, intervalMinutes, horizonHours), nil
}
