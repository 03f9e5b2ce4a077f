package model

import (
	"fmt"
	"math"

	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/plant"
)

// buildInverter creates the PV/curtailment variables for one
// inverter, its net-AC row, and (when it owns a battery) the battery
// subsystem.
func (b *builder) buildInverter(inv plant.Inverter) error {
	n := b.n()
	series, ok := b.in.InverterPV[inv.ID]
	if !ok || len(series) != n {
		return &ConfigInvalidError{Field: fmt.Sprintf("inverter[%s].pv_forecast", inv.ID), Message: "missing or wrong length"}
	}

	pv := make([]int, n)
	acnet := make([]int, n)
	var curt []int
	if inv.Curtailment != plant.CurtailmentNone {
		curt = make([]int, n)
	}

	for t := 0; t < n; t++ {
		f := series[t]
		pvVar := b.problem.AddVar(fmt.Sprintf("P_pv[%s,%d]", inv.ID, t), milp.Continuous, 0, math.Max(f, inv.PeakPowerKW))
		pv[t] = pvVar

		switch inv.Curtailment {
		case plant.CurtailmentNone:
			b.problem.AddRow(fmt.Sprintf("pv_fixed[%s,%d]", inv.ID, t),
				map[int]float64{pvVar: 1}, milp.EQ, f)

		case plant.CurtailmentBinary:
			c := b.problem.AddVar(fmt.Sprintf("Curt[%s,%d]", inv.ID, t), milp.Binary, 0, 1)
			curt[t] = c
			// P_pv + F_pv*Curt = F_pv
			b.problem.AddRow(fmt.Sprintf("pv_curt[%s,%d]", inv.ID, t),
				map[int]float64{pvVar: 1, c: f}, milp.EQ, f)

		case plant.CurtailmentLoadAware:
			c := b.problem.AddVar(fmt.Sprintf("Curt[%s,%d]", inv.ID, t), milp.Binary, 0, 1)
			curt[t] = c
			// P_pv <= F_pv
			b.problem.AddRow(fmt.Sprintf("pv_cap[%s,%d]", inv.ID, t),
				map[int]float64{pvVar: 1}, milp.LE, f)
			// P_pv + F_pv*Curt >= F_pv
			b.problem.AddRow(fmt.Sprintf("pv_follow_load[%s,%d]", inv.ID, t),
				map[int]float64{pvVar: 1, c: f}, milp.GE, f)
			// P_exp[t] + G_exp_max*Curt <= G_exp_max
			gExp := b.plant.Grid.ExportMaxKW
			b.problem.AddRow(fmt.Sprintf("export_block_curt[%s,%d]", inv.ID, t),
				map[int]float64{b.idx.Export[t]: 1, c: gExp}, milp.LE, gExp)
		}

		acLower, acUpper := -math.Max(f, inv.PeakPowerKW), math.Max(f, inv.PeakPowerKW)
		if inv.Battery != nil {
			maxD := inv.PeakPowerKW
			if inv.Battery.MaxDischargeKW != nil {
				maxD = *inv.Battery.MaxDischargeKW
			}
			acLower -= maxD
			acUpper += maxD
		}
		acnet[t] = b.problem.AddVar(fmt.Sprintf("P_acnet[%s,%d]", inv.ID, t), milp.Continuous, acLower, acUpper)
	}

	b.idx.PV[inv.ID] = pv
	b.idx.ACNet[inv.ID] = acnet
	if curt != nil {
		b.idx.Curt[inv.ID] = curt
	}

	if inv.Battery != nil {
		if err := b.buildBattery(inv, pv, acnet); err != nil {
			return err
		}
	} else {
		for t := 0; t < n; t++ {
			// P_acnet[k,t] = P_pv[k,t] (no battery terms)
			b.problem.AddRow(fmt.Sprintf("acnet[%s,%d]", inv.ID, t),
				map[int]float64{acnet[t]: 1, pv[t]: -1}, milp.EQ, 0)
		}
	}

	return nil
}
