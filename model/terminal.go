package model

import (
	"fmt"

	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/plant"
)

// buildTerminal applies one battery's end-of-horizon SoC handling.
// energy is the battery's E_b sequence (length N+1); e0 and reserveE
// are its initial energy and reserve-SoC energy in kWh.
func (b *builder) buildTerminal(inv plant.Inverter, energy []int, e0, reserveE float64) error {
	n := b.n()
	bat := inv.Battery
	last := energy[n]

	switch bat.Terminal {
	case plant.TerminalHard:
		// E_b[N] >= E_b[0]
		b.problem.AddRow(fmt.Sprintf("terminal_hard[%s]", inv.ID),
			map[int]float64{last: 1, energy[0]: -1}, milp.GE, 0)

	case plant.TerminalAdaptive:
		totalMinutes := b.horizon.Slots[n-1].End.Sub(b.horizon.Slots[0].Start).Minutes()
		ratio := 1.0
		if bat.ShortHorizonMinutes > 0 && totalMinutes < float64(bat.ShortHorizonMinutes) {
			ratio = totalMinutes / float64(bat.ShortHorizonMinutes)
		}
		target := reserveE + ratio*(e0-reserveE)

		slack := b.problem.AddVar(fmt.Sprintf("terminal_slack[%s]", inv.ID), milp.Continuous, 0, bat.CapacityKWh)
		// E_b[N] + slack >= target
		b.problem.AddRow(fmt.Sprintf("terminal_adaptive[%s]", inv.ID),
			map[int]float64{last: 1, slack: 1}, milp.GE, target)
		b.idx.BatSlack[inv.ID] = slack
	}

	return nil
}
