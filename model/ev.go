package model

import (
	"fmt"
	"time"

	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/plant"
)

// buildEV creates one controlled EV's charging variables: power
// (gated per slot by connection rules), SoC trajectory, ramp,
// slot-0 anchor, and incentive segments.
func (b *builder) buildEV(ev plant.ControlledEV) error {
	n := b.n()

	connectedNow, ok := b.in.EVConnectedNow[ev.ID]
	if !ok {
		return &ConfigInvalidError{Field: fmt.Sprintf("ev[%s].connected_now", ev.ID), Message: "missing realtime connection state"}
	}
	socNow, ok := b.in.EVSoCNowPct[ev.ID]
	if !ok {
		return &ConfigInvalidError{Field: fmt.Sprintf("ev[%s].soc_now", ev.ID), Message: "missing realtime SoC"}
	}
	powerNow := b.in.EVPowerNowKW[ev.ID]

	allowed := b.evAllowedSlots(ev, connectedNow)

	power := make([]int, n)
	var on []int
	if ev.MinChargeKW > 0 {
		on = make([]int, n)
	}

	for t := 0; t < n; t++ {
		upper := ev.MaxChargeKW
		if !allowed[t] {
			upper = 0
		}

		p := b.problem.AddVar(fmt.Sprintf("P_ev[%s,%d]", ev.ID, t), milp.Continuous, 0, upper)
		power[t] = p

		if ev.MinChargeKW > 0 {
			o := b.problem.AddVar(fmt.Sprintf("on_ev[%s,%d]", ev.ID, t), milp.Binary, 0, 1)
			on[t] = o
			// min_power * on <= P_ev <= max_power * on
			b.problem.AddRow(fmt.Sprintf("ev_min[%s,%d]", ev.ID, t),
				map[int]float64{p: 1, o: -ev.MinChargeKW}, milp.GE, 0)
			b.problem.AddRow(fmt.Sprintf("ev_max[%s,%d]", ev.ID, t),
				map[int]float64{p: 1, o: -upper}, milp.LE, 0)
		}
	}
	b.idx.EVPower[ev.ID] = power
	if on != nil {
		b.idx.EVOn[ev.ID] = on
	}

	capacity := ev.CapacityKWh
	energy := make([]int, n+1)
	e0 := socNow / 100 * capacity
	energy[0] = b.problem.AddVar(fmt.Sprintf("E_ev[%s,0]", ev.ID), milp.Continuous, e0, e0)
	for t := 0; t < n; t++ {
		e := b.problem.AddVar(fmt.Sprintf("E_ev[%s,%d]", ev.ID, t+1), milp.Continuous, 0, capacity)
		energy[t+1] = e
		dt := b.dt(t)
		// E_ev[t+1] = E_ev[t] + P_ev[t]*dt
		b.problem.AddRow(fmt.Sprintf("ev_soc[%s,%d]", ev.ID, t),
			map[int]float64{e: 1, energy[t]: -1, power[t]: -dt}, milp.EQ, 0)
	}
	b.idx.EVEnergy[ev.ID] = energy

	ramp := make([]int, n)
	for t := 1; t < n; t++ {
		r := b.problem.AddVar(fmt.Sprintf("r_ev[%s,%d]", ev.ID, t), milp.Continuous, 0, ev.MaxChargeKW)
		ramp[t] = r
		// r >= P[t] - P[t-1]
		b.problem.AddRow(fmt.Sprintf("ev_ramp_up[%s,%d]", ev.ID, t),
			map[int]float64{r: 1, power[t]: -1, power[t-1]: 1}, milp.GE, 0)
		// r >= P[t-1] - P[t]
		b.problem.AddRow(fmt.Sprintf("ev_ramp_down[%s,%d]", ev.ID, t),
			map[int]float64{r: 1, power[t-1]: -1, power[t]: 1}, milp.GE, 0)
	}
	b.idx.EVRamp[ev.ID] = ramp

	b.idx.EVAnchor[ev.ID] = -1
	if powerNow >= anchorDeadbandKW {
		a := b.problem.AddVar(fmt.Sprintf("a_ev[%s]", ev.ID), milp.Continuous, 0, ev.MaxChargeKW)
		// a >= P_ev[0] - P_realtime
		b.problem.AddRow(fmt.Sprintf("ev_anchor_up[%s]", ev.ID),
			map[int]float64{a: 1, power[0]: -1}, milp.GE, -powerNow)
		// a >= P_realtime - P_ev[0]
		b.problem.AddRow(fmt.Sprintf("ev_anchor_down[%s]", ev.ID),
			map[int]float64{a: 1, power[0]: 1}, milp.GE, powerNow)
		b.idx.EVAnchor[ev.ID] = a
	}

	if ev.SwitchPenalty != nil && on != nil {
		sw := make([]int, n)
		for t := 1; t < n; t++ {
			s := b.problem.AddVar(fmt.Sprintf("ev_switch[%s,%d]", ev.ID, t), milp.Continuous, 0, 1)
			sw[t] = s
			// s >= |on[t] - on[t-1]|
			b.problem.AddRow(fmt.Sprintf("ev_switch_on[%s,%d]", ev.ID, t),
				map[int]float64{s: 1, on[t]: -1, on[t-1]: 1}, milp.GE, 0)
			b.problem.AddRow(fmt.Sprintf("ev_switch_off[%s,%d]", ev.ID, t),
				map[int]float64{s: 1, on[t-1]: -1, on[t]: 1}, milp.GE, 0)
		}
		b.idx.EVSwitch[ev.ID] = sw
	}

	if d := ev.DeadlineTarget; d != nil {
		for k := 1; k <= n; k++ {
			if b.horizon.Slots[k-1].End.Before(d.Time) {
				continue
			}
			// E_ev at the first boundary past the deadline must reach
			// the target; an unreachable target surfaces as infeasible
			// rather than being silently relaxed.
			b.problem.AddRow(fmt.Sprintf("ev_deadline[%s]", ev.ID),
				map[int]float64{energy[k]: 1}, milp.GE, d.TargetPct/100*capacity)
			break
		}
	}

	b.buildEVIncentives(ev, energy[n], e0)

	return nil
}

// buildEVIncentives creates one segment variable per SoC-incentive
// band plus a trailing zero-reward segment absorbing capacity above
// the final band, constrained so their sum plus initial SoC equals
// terminal SoC. Charging is monotone, so each band's width is the
// energy remaining in it above the current SoC; bands the EV has
// already filled get zero-width segments and earn nothing again.
func (b *builder) buildEVIncentives(ev plant.ControlledEV, terminalEnergy int, e0 float64) {
	capacity := ev.CapacityKWh
	segments := make([]int, 0, len(ev.SoCIncentives)+1)
	coeffs := map[int]float64{terminalEnergy: 1}

	floor := e0
	for i, band := range ev.SoCIncentives {
		ceil := band.TargetPct / 100 * capacity
		width := ceil - floor
		if width < 0 {
			width = 0
		} else {
			floor = ceil
		}
		seg := b.problem.AddVar(fmt.Sprintf("ev_seg[%s,%d]", ev.ID, i), milp.Continuous, 0, width)
		segments = append(segments, seg)
		coeffs[seg] = -1
	}

	// Trailing zero-incentive segment absorbs capacity above the final band.
	trailingWidth := capacity - floor
	if trailingWidth < 0 {
		trailingWidth = 0
	}
	trailing := b.problem.AddVar(fmt.Sprintf("ev_seg[%s,trailing]", ev.ID), milp.Continuous, 0, trailingWidth)
	segments = append(segments, trailing)
	coeffs[trailing] = -1

	// E_ev[N] - sum(segments) = e0
	b.problem.AddRow(fmt.Sprintf("ev_incentive_segments[%s]", ev.ID), coeffs, milp.EQ, e0)

	b.idx.EVSegments[ev.ID] = segments
}

// evAllowedSlots decides, per slot, whether the EV may draw power:
// allowed throughout if it is currently connected; otherwise gated by
// can_connect, the grace period, and any allowed-connect-time windows.
func (b *builder) evAllowedSlots(ev plant.ControlledEV, connectedNow bool) []bool {
	n := b.n()
	allowed := make([]bool, n)

	if connectedNow {
		for t := range allowed {
			allowed[t] = true
		}
		return allowed
	}

	if !ev.CanConnect {
		return allowed // all false
	}

	loc := b.in.Location
	if loc == nil {
		loc = b.horizon.Slots[0].Start.Location()
	}
	earliest := b.in.Now.Add(time.Duration(ev.ConnectGraceMinutes) * time.Minute)

	for t, slot := range b.horizon.Slots {
		if slot.Start.Before(earliest) {
			continue
		}
		if len(ev.AllowedConnectTimes) > 0 && !inAnyWindow(ev.AllowedConnectTimes, slot.Start, loc) {
			continue
		}
		allowed[t] = true
	}
	return allowed
}
