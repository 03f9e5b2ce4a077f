package plan

import (
	"math"
	"time"

	"github.com/devskill-org/ems-planner/horizon"
	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/model"
	"github.com/devskill-org/ems-planner/plant"
)

// round3 rounds x to 3 decimal places, the precision every numeric
// plan field is published at.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Extract flattens a solved MILP into a Plan. sol must be the
// solution of the problem idx was produced alongside.
func Extract(generatedAt time.Time, status string, h *horizon.Horizon, p *plant.Plant, in model.Inputs, idx *model.Indices, sol *milp.Solution) *Plan {
	out := &Plan{
		GeneratedAt:     generatedAt,
		Status:          status,
		GridImportMaxKW: p.Grid.ImportMaxKW,
		GridExportMaxKW: p.Grid.ExportMaxKW,
	}
	if sol != nil {
		out.Objective = round3(sol.Objective)
	}
	for _, inv := range p.Inverters {
		if inv.Battery == nil {
			continue
		}
		if out.BatteryCapacitiesKWh == nil {
			out.BatteryCapacitiesKWh = make(map[string]float64)
		}
		out.BatteryCapacitiesKWh[inv.ID] = inv.Battery.CapacityKWh
	}
	for _, ev := range p.EVs {
		if out.EVCapacitiesKWh == nil {
			out.EVCapacitiesKWh = make(map[string]float64)
		}
		out.EVCapacitiesKWh[ev.ID] = ev.CapacityKWh
	}

	cumulative := 0.0
	out.Slots = make([]Slot, idx.N)

	for t := 0; t < idx.N; t++ {
		slot := h.Slots[t]
		s := Slot{
			Index:     t,
			Start:     slot.Start,
			End:       slot.End,
			DurationS: round3(slot.End.Sub(slot.Start).Seconds()),
		}

		imp := sol.Value(idx.Import[t])
		exp := sol.Value(idx.Export[t])
		vImp := sol.Value(idx.ImportSlack[t])

		s.GridImportKW = round3(imp)
		s.GridExportKW = round3(exp)
		s.GridImportViolationKW = round3(vImp)
		s.GridKW = round3(imp - exp)
		s.ImportAllowed = idx.AllowImport[t]

		s.LoadKW = round3(in.Load[t])

		priceImport := in.ImportPrice[t]
		priceExport := in.ExportPrice[t]
		if bias := p.Grid.PriceBiasPct; bias != nil {
			priceExport *= 1 + *bias/100
		}
		s.PriceImport = round3(priceImport)
		s.PriceExport = round3(priceExport)

		segmentCost := (priceImport*imp - priceExport*exp) * slot.DurationH
		cumulative += segmentCost
		s.SegmentCost = round3(segmentCost)
		s.CumulativeCost = round3(cumulative)

		s.PVInverters = make(map[string]float64, len(idx.PV))
		s.CurtailInverters = make(map[string]int, len(idx.PV))
		var pvTotal, acnetTotal, chargeTotal, dischargeTotal, socTotal float64
		for _, inv := range p.Inverters {
			pv := sol.Value(idx.PV[inv.ID][t])
			s.PVInverters[inv.ID] = round3(pv)
			pvTotal += pv
			acnetTotal += sol.Value(idx.ACNet[inv.ID][t])

			curt := 0
			if curtVars, ok := idx.Curt[inv.ID]; ok {
				if sol.Value(curtVars[t]) > 0.5 {
					curt = 1
					s.CurtailAny = true
				}
			}
			s.CurtailInverters[inv.ID] = curt

			if inv.Battery != nil {
				chargeTotal += sol.Value(idx.BatCharge[inv.ID][t])
				dischargeTotal += sol.Value(idx.BatDischarge[inv.ID][t])
				socTotal += sol.Value(idx.BatEnergy[inv.ID][t])
			}
		}
		s.PVKW = round3(pvTotal)
		s.InverterACNetKW = round3(acnetTotal)
		s.BatteryChargeKW = round3(chargeTotal)
		s.BatteryDischargeKW = round3(dischargeTotal)
		s.BatterySoCKWh = round3(socTotal)

		var evTotal, evSoCTotal float64
		for _, ev := range p.EVs {
			evTotal += sol.Value(idx.EVPower[ev.ID][t])
			evSoCTotal += sol.Value(idx.EVEnergy[ev.ID][t])
		}
		s.EVChargeKW = round3(evTotal)
		s.EVSoCKWh = round3(evSoCTotal)
		s.LoadTotalKW = round3(in.Load[t] + evTotal)

		out.Slots[t] = s
	}

	return out
}
