package emsplanner

import (
	"github.com/devskill-org/ems-planner/forecast"
	"github.com/devskill-org/ems-planner/horizon"
	"github.com/devskill-org/ems-planner/model"
)

// alignInputs projects every resolved forecast onto h's slots and
// assembles the model.Inputs the builder consumes.
func (pl *Planner) alignInputs(h *horizon.Horizon, r *resolvedSources) (model.Inputs, error) {
	in := model.Inputs{
		Now:              h.Now,
		Location:         pl.locOrDefault(),
		InverterPV:       make(map[string][]float64, len(r.pv)),
		BatterySoCNowPct: r.batterySoCNowPct,
		EVConnectedNow:   r.evConnectedNow,
		EVPowerNowKW:     r.evPowerNowKW,
		EVSoCNowPct:      r.evSoCNowPct,
	}

	var err error
	in.ImportPrice, err = forecast.Align(r.importPrice, h.Slots, r.importPriceNow)
	if err != nil {
		return in, err
	}
	in.ExportPrice, err = forecast.Align(r.exportPrice, h.Slots, r.exportPriceNow)
	if err != nil {
		return in, err
	}
	in.Load, err = forecast.Align(r.load, h.Slots, r.loadRealtimeNow)
	if err != nil {
		return in, err
	}

	for id, intervals := range r.pv {
		in.InverterPV[id], err = forecast.Align(intervals, h.Slots, r.pvRealtimeNow[id])
		if err != nil {
			return in, err
		}
	}

	return in, nil
}
