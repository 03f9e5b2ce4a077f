package model

import (
	"fmt"

	"github.com/devskill-org/ems-planner/milp"
)

// buildBalance ties grid, inverter, and EV power together per slot:
// P_imp[t] + sum_k P_acnet[k,t] = L[t] + sum_e P_ev[e,t] + P_exp[t].
func (b *builder) buildBalance() error {
	for t := 0; t < b.n(); t++ {
		coeffs := map[int]float64{
			b.idx.Import[t]: 1,
			b.idx.Export[t]: -1,
		}
		for _, acnet := range b.idx.ACNet {
			coeffs[acnet[t]] += 1
		}
		for _, power := range b.idx.EVPower {
			coeffs[power[t]] -= 1
		}
		b.problem.AddRow(fmt.Sprintf("balance[%d]", t), coeffs, milp.EQ, b.in.Load[t])
	}
	return nil
}
