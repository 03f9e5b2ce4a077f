package model

import (
	"fmt"
	"time"

	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/timeutil"
)

// buildGrid creates the import/export variables, the exclusivity
// selector, and the forbidden-import slack for every slot.
func (b *builder) buildGrid() error {
	n := b.n()
	if len(b.in.ImportPrice) != n || len(b.in.ExportPrice) != n || len(b.in.Load) != n {
		return &ConfigInvalidError{Field: "inputs", Message: "price/load series length must match horizon slot count"}
	}

	b.idx.Import = make([]int, n)
	b.idx.Export = make([]int, n)
	b.idx.OnImport = make([]int, n)
	b.idx.ImportSlack = make([]int, n)
	b.idx.AllowImport = make([]bool, n)

	gImp := b.plant.Grid.ImportMaxKW
	gExp := b.plant.Grid.ExportMaxKW

	loc := b.in.Location
	if loc == nil {
		loc = b.horizon.Slots[0].Start.Location()
	}

	for t, slot := range b.horizon.Slots {
		imp := b.problem.AddVar(fmt.Sprintf("P_imp[%d]", t), milp.Continuous, 0, gImp)
		exp := b.problem.AddVar(fmt.Sprintf("P_exp[%d]", t), milp.Continuous, 0, gExp)
		onImp := b.problem.AddVar(fmt.Sprintf("on_imp[%d]", t), milp.Binary, 0, 1)
		vImp := b.problem.AddVar(fmt.Sprintf("V_imp[%d]", t), milp.Continuous, 0, gImp)

		b.idx.Import[t] = imp
		b.idx.Export[t] = exp
		b.idx.OnImport[t] = onImp
		b.idx.ImportSlack[t] = vImp

		allow := !inAnyWindow(b.plant.Grid.ImportForbiddenWindows, slot.Start, loc)
		b.idx.AllowImport[t] = allow

		// P_imp[t] <= G_imp_max * on_imp[t]
		b.problem.AddRow(fmt.Sprintf("imp_excl[%d]", t),
			map[int]float64{imp: 1, onImp: -gImp}, milp.LE, 0)

		// P_exp[t] <= G_exp_max * (1 - on_imp[t])
		b.problem.AddRow(fmt.Sprintf("exp_excl[%d]", t),
			map[int]float64{exp: 1, onImp: gExp}, milp.LE, gExp)

		// P_imp[t] <= G_imp_max * allow_imp[t] + V_imp[t]
		allowRHS := 0.0
		if allow {
			allowRHS = gImp
		}
		b.problem.AddRow(fmt.Sprintf("imp_forbidden[%d]", t),
			map[int]float64{imp: 1, vImp: -1}, milp.LE, allowRHS)
	}

	return nil
}

// inAnyWindow reports whether t falls inside any of windows, local to loc.
func inAnyWindow(windows []timeutil.Window, t time.Time, loc *time.Location) bool {
	for _, w := range windows {
		if w.Contains(t, loc) {
			return true
		}
	}
	return false
}
