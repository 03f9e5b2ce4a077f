package emsplanner

import (
	"context"
	"time"

	"github.com/devskill-org/ems-planner/forecast"
)

// resolvedSources holds every forecast and realtime scalar the builder
// needs, still in raw interval form (not yet aligned onto a horizon,
// since the horizon's length depends on their coverage).
type resolvedSources struct {
	importPrice []forecast.PriceInterval
	exportPrice []forecast.PriceInterval
	load        []forecast.PowerInterval

	importPriceNow *float64
	exportPriceNow *float64

	pv map[string][]forecast.PowerInterval // inverter id -> PV forecast

	loadRealtimeNow *float64
	pvRealtimeNow   map[string]*float64 // inverter id -> realtime override

	batterySoCNowPct map[string]float64 // inverter id -> soc pct

	evConnectedNow map[string]bool
	evPowerNowKW   map[string]float64
	evSoCNowPct    map[string]float64

	maxCoverageMinutes int
}

// resolveInputs pulls every forecast and realtime scalar the plant's
// topology references and determines the shortest forecast coverage,
// which bounds how long a horizon can be built.
func (pl *Planner) resolveInputs(ctx context.Context, now time.Time) (*resolvedSources, error) {
	minHorizon := pl.Horizon.MinHorizonMinutes
	r := &resolvedSources{
		pv:               make(map[string][]forecast.PowerInterval),
		pvRealtimeNow:    make(map[string]*float64),
		batterySoCNowPct: make(map[string]float64),
		evConnectedNow:   make(map[string]bool),
		evPowerNowKW:     make(map[string]float64),
		evSoCNowPct:      make(map[string]float64),
	}

	coverage := -1
	track := func(intervals []forecast.Interval) {
		m := coverageMinutes(now, intervals)
		if coverage < 0 || m < coverage {
			coverage = m
		}
	}

	var err error
	r.importPrice, err = pl.Resolver.ResolvePriceForecast(ctx, pl.Plant.Grid.ImportPriceRef, minHorizon)
	if err != nil {
		return nil, err
	}
	track(r.importPrice)

	r.exportPrice, err = pl.Resolver.ResolvePriceForecast(ctx, pl.Plant.Grid.ExportPriceRef, minHorizon)
	if err != nil {
		return nil, err
	}
	track(r.exportPrice)

	if pl.Plant.Grid.ImportPriceRealtimeRef != nil {
		v, err := pl.Resolver.ResolveScalar(ctx, *pl.Plant.Grid.ImportPriceRealtimeRef)
		if err != nil {
			return nil, err
		}
		r.importPriceNow = &v
	}
	if pl.Plant.Grid.ExportPriceRealtimeRef != nil {
		v, err := pl.Resolver.ResolveScalar(ctx, *pl.Plant.Grid.ExportPriceRealtimeRef)
		if err != nil {
			return nil, err
		}
		r.exportPriceNow = &v
	}

	r.load, err = pl.Resolver.ResolvePowerForecast(ctx, pl.Plant.LoadForecastRef, minHorizon)
	if err != nil {
		return nil, err
	}
	track(r.load)

	if pl.Plant.LoadRealtimeRef != nil {
		v, err := pl.Resolver.ResolveScalar(ctx, *pl.Plant.LoadRealtimeRef)
		if err != nil {
			return nil, err
		}
		r.loadRealtimeNow = &v
	}

	for _, inv := range pl.Plant.Inverters {
		pv, err := pl.Resolver.ResolvePowerForecast(ctx, inv.PVForecastRef, minHorizon)
		if err != nil {
			return nil, err
		}
		r.pv[inv.ID] = pv
		track(pv)

		if inv.PVRealtimeRef != nil {
			v, err := pl.Resolver.ResolveScalar(ctx, *inv.PVRealtimeRef)
			if err != nil {
				return nil, err
			}
			r.pvRealtimeNow[inv.ID] = &v
		}

		if inv.Battery != nil {
			v, err := pl.Resolver.ResolveScalar(ctx, inv.Battery.SoCRealtimeRef)
			if err != nil {
				return nil, err
			}
			r.batterySoCNowPct[inv.ID] = v
		}
	}

	for _, ev := range pl.Plant.EVs {
		connected, err := pl.Resolver.ResolveScalar(ctx, ev.ConnectedRef)
		if err != nil {
			return nil, err
		}
		r.evConnectedNow[ev.ID] = connected > 0.5

		power, err := pl.Resolver.ResolveScalar(ctx, ev.PowerRealtimeRef)
		if err != nil {
			return nil, err
		}
		r.evPowerNowKW[ev.ID] = power

		soc, err := pl.Resolver.ResolveScalar(ctx, ev.SoCRealtimeRef)
		if err != nil {
			return nil, err
		}
		r.evSoCNowPct[ev.ID] = soc
	}

	if coverage < 0 {
		coverage = minHorizon
	}
	r.maxCoverageMinutes = coverage

	return r, nil
}

// coverageMinutes reports how many minutes of forward coverage
// intervals provides, measured from now to the last interval's end.
// History reaching into the past must not count: the horizon extends
// forward from floor(now), so only coverage beyond now bounds it.
func coverageMinutes(now time.Time, intervals []forecast.Interval) int {
	if len(intervals) == 0 {
		return 0
	}
	end := intervals[0].End
	for _, iv := range intervals {
		if iv.End.After(end) {
			end = iv.End
		}
	}
	m := int(end.Sub(now).Minutes())
	if m < 0 {
		return 0
	}
	return m
}
