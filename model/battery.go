package model

import (
	"fmt"
	"math"

	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/plant"
)

// buildBattery creates one inverter's battery subsystem: charge/
// discharge power, the SoC trajectory, the mode selector, the
// reserve/export gate, the net-AC coupling row, and terminal handling.
func (b *builder) buildBattery(inv plant.Inverter, pv, acnet []int) error {
	n := b.n()
	bat := inv.Battery

	maxC := inv.PeakPowerKW
	if bat.MaxChargeKW != nil {
		maxC = *bat.MaxChargeKW
	}
	maxD := inv.PeakPowerKW
	if bat.MaxDischargeKW != nil {
		maxD = *bat.MaxDischargeKW
	}

	capacity := bat.CapacityKWh
	minE := bat.MinSoCPct / 100 * capacity
	maxE := bat.MaxSoCPct / 100 * capacity
	reserveE := bat.ReserveSoCPct / 100 * capacity

	socNow, ok := b.in.BatterySoCNowPct[inv.ID]
	if !ok {
		return &ConfigInvalidError{Field: fmt.Sprintf("inverter[%s].battery.soc_now", inv.ID), Message: "missing realtime SoC"}
	}
	e0 := socNow / 100 * capacity

	eta := math.Sqrt(bat.StorageEfficiencyPct / 100)

	charge := make([]int, n)
	discharge := make([]int, n)
	mode := make([]int, n)
	gate := make([]int, n)
	energy := make([]int, n+1)

	energy[0] = b.problem.AddVar(fmt.Sprintf("E_b[%s,0]", inv.ID), milp.Continuous, e0, e0)

	for t := 0; t < n; t++ {
		pc := b.problem.AddVar(fmt.Sprintf("P_bc[%s,%d]", inv.ID, t), milp.Continuous, 0, maxC)
		pd := b.problem.AddVar(fmt.Sprintf("P_bd[%s,%d]", inv.ID, t), milp.Continuous, 0, maxD)
		m := b.problem.AddVar(fmt.Sprintf("m_b[%s,%d]", inv.ID, t), milp.Binary, 0, 1)
		g := b.problem.AddVar(fmt.Sprintf("reserve_gate[%s,%d]", inv.ID, t), milp.Binary, 0, 1)

		charge[t] = pc
		discharge[t] = pd
		mode[t] = m
		gate[t] = g

		// P_bc[k,t] <= maxC * m_b[k,t]
		b.problem.AddRow(fmt.Sprintf("bat_charge_mode[%s,%d]", inv.ID, t),
			map[int]float64{pc: 1, m: -maxC}, milp.LE, 0)
		// P_bd[k,t] <= maxD * (1 - m_b[k,t])
		b.problem.AddRow(fmt.Sprintf("bat_discharge_mode[%s,%d]", inv.ID, t),
			map[int]float64{pd: 1, m: maxD}, milp.LE, maxD)

		e := b.problem.AddVar(fmt.Sprintf("E_b[%s,%d]", inv.ID, t+1), milp.Continuous, minE, maxE)
		energy[t+1] = e

		dt := b.dt(t)
		// E_b[t+1] - E_b[t] - eta*dt*P_bc + (dt/eta)*P_bd = 0
		b.problem.AddRow(fmt.Sprintf("bat_soc[%s,%d]", inv.ID, t),
			map[int]float64{e: 1, energy[t]: -1, pc: -eta * dt, pd: dt / eta}, milp.EQ, 0)

		// Reserve/export gate: E_b[k,t] >= reserveE - bigM*g[k,t]
		b.problem.AddRow(fmt.Sprintf("reserve_gate_energy[%s,%d]", inv.ID, t),
			map[int]float64{energy[t]: 1, g: bigM}, milp.GE, reserveE)
		// P_exp[t] <= G_exp_max * (1 - g[k,t])
		gExp := b.plant.Grid.ExportMaxKW
		b.problem.AddRow(fmt.Sprintf("reserve_gate_export[%s,%d]", inv.ID, t),
			map[int]float64{b.idx.Export[t]: 1, g: gExp}, milp.LE, gExp)

		// P_acnet[k,t] = P_pv[k,t] + P_bd[k,t] - P_bc[k,t]
		b.problem.AddRow(fmt.Sprintf("acnet[%s,%d]", inv.ID, t),
			map[int]float64{acnet[t]: 1, pv[t]: -1, pd: -1, pc: 1}, milp.EQ, 0)
	}

	b.idx.BatCharge[inv.ID] = charge
	b.idx.BatDischarge[inv.ID] = discharge
	b.idx.BatMode[inv.ID] = mode
	b.idx.BatGate[inv.ID] = gate
	b.idx.BatEnergy[inv.ID] = energy
	b.idx.BatSlack[inv.ID] = -1

	return b.buildTerminal(inv, energy, e0, reserveE)
}
