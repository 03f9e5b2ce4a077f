package milp

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// tolerance is the feasibility/integrality slack accepted throughout
// branch-and-bound, matching the "within solver tolerance" language
// the invariants are stated against.
const tolerance = 1e-7

// maxNodes bounds the branch-and-bound search so a pathological
// configuration fails loudly instead of hanging.
const maxNodes = 50000

// bounds overrides a subset of variable bounds for one search node,
// used to fix binary variables to 0 or 1 while branching.
type bounds map[int][2]float64

func (b bounds) boundsFor(p *Problem, idx int) (float64, float64) {
	if ov, ok := b[idx]; ok {
		return ov[0], ov[1]
	}
	return p.Vars[idx].Lower, p.Vars[idx].Upper
}

func (b bounds) fix(idx int, lo, hi float64) bounds {
	next := make(bounds, len(b)+1)
	for k, v := range b {
		next[k] = v
	}
	next[idx] = [2]float64{lo, hi}
	return next
}

// Solve runs branch-and-bound over p's binary variables, solving an
// LP relaxation at each node with gonum's simplex kernel. ctx is
// checked between nodes; a cancelled context aborts the search.
func Solve(ctx context.Context, p *Problem) (*Solution, error) {
	root := bounds{}

	var best *Solution
	bestObj := math.Inf(1)

	queue := []bounds{root}
	nodes := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nodes++
		if nodes > maxNodes {
			return nil, &SolverError{Stage: "branch-and-bound", Err: errors.New("node limit exceeded")}
		}

		node := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		relaxObj, values, feasible, err := solveRelaxation(p, node)
		if err != nil {
			return nil, &SolverError{Stage: "lp-relaxation", Err: err}
		}
		if !feasible {
			continue
		}
		if relaxObj >= bestObj-tolerance {
			continue // bound: this branch cannot beat the incumbent
		}

		branchVar := mostFractionalBinary(p, values)
		if branchVar < 0 {
			// Already integral: a candidate incumbent.
			bestObj = relaxObj
			best = &Solution{Status: StatusOptimal, Objective: relaxObj, Values: values}
			continue
		}

		lo, hi := node.boundsFor(p, branchVar)
		queue = append(queue, node.fix(branchVar, lo, 0), node.fix(branchVar, 1, hi))
	}

	if best == nil {
		return nil, &InfeasibleError{}
	}
	return best, nil
}

// mostFractionalBinary returns the binary variable index whose
// relaxed value is furthest from 0 or 1, or -1 if all binaries are
// already integral within tolerance.
func mostFractionalBinary(p *Problem, values []float64) int {
	idx := -1
	best := tolerance
	for i, v := range p.Vars {
		if v.Kind != Binary {
			continue
		}
		x := values[i]
		dist := math.Min(x, 1-x)
		if dist > best {
			best = dist
			idx = i
		}
	}
	return idx
}

// solveRelaxation solves the LP relaxation of p with variable bounds
// overridden by node, reporting feasible=false rather than erroring
// when the node is infeasible (the normal outcome of a failed branch).
//
// The relaxation is posed to the kernel in standard form: every
// variable is shifted to y = x - lower so y >= 0 matches the kernel's
// convention, inequality rows (including the per-variable upper
// bounds) get one slack column each, and every right-hand side is
// normalized non-negative.
func solveRelaxation(p *Problem, node bounds) (objective float64, values []float64, feasible bool, err error) {
	n := len(p.Vars)
	if n == 0 {
		return 0, nil, true, nil
	}

	lower := make([]float64, n)
	width := make([]float64, n)

	for i := range p.Vars {
		lo, hi := node.boundsFor(p, i)
		if lo > hi+tolerance {
			return 0, nil, false, nil
		}
		lower[i] = lo
		width[i] = hi - lo
	}

	type ineq struct {
		coeffs map[int]float64
		rhs    float64
	}
	var ineqs []ineq
	var eqs []ineq

	for _, row := range p.Rows {
		rhs := row.RHS
		for i, a := range row.Coeffs {
			rhs -= a * lower[i]
		}
		switch row.Op {
		case LE:
			ineqs = append(ineqs, ineq{coeffs: row.Coeffs, rhs: rhs})
		case GE:
			neg := make(map[int]float64, len(row.Coeffs))
			for i, a := range row.Coeffs {
				neg[i] = -a
			}
			ineqs = append(ineqs, ineq{coeffs: neg, rhs: -rhs})
		case EQ:
			eqs = append(eqs, ineq{coeffs: row.Coeffs, rhs: rhs})
		}
	}

	// Upper-bound rows: y_i <= width_i for every finitely-bounded
	// variable (which, in this module's models, is all of them).
	for i, w := range width {
		if math.IsInf(w, 1) {
			continue
		}
		ineqs = append(ineqs, ineq{coeffs: map[int]float64{i: 1}, rhs: w})
	}

	nRows := len(eqs) + len(ineqs)
	nCols := n + len(ineqs) // one slack column per inequality
	if nRows == 0 {
		// No constraints at all: each y sits at whichever bound its
		// objective coefficient favors.
		out := make([]float64, n)
		obj := 0.0
		for i := range p.Vars {
			c := p.Obj[i]
			y := 0.0
			if c < 0 {
				if math.IsInf(width[i], 1) {
					return 0, nil, false, errors.New("unbounded variable with negative cost")
				}
				y = width[i]
			}
			out[i] = y + lower[i]
			obj += c * out[i]
		}
		return obj, out, true, nil
	}

	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	constant := 0.0
	for i, coeff := range p.Obj {
		c[i] = coeff
		constant += coeff * lower[i]
	}

	row := 0
	for _, eq := range eqs {
		for i, v := range eq.coeffs {
			a.Set(row, i, v)
		}
		b[row] = eq.rhs
		row++
	}
	for s, iq := range ineqs {
		for i, v := range iq.coeffs {
			a.Set(row, i, v)
		}
		a.Set(row, n+s, 1)
		b[row] = iq.rhs
		row++
	}

	// Simplex's phase 1 is happiest with b >= 0; negating a row keeps
	// the equality system equivalent.
	for r := 0; r < nRows; r++ {
		if b[r] < 0 {
			b[r] = -b[r]
			for col := 0; col < nCols; col++ {
				a.Set(r, col, -a.At(r, col))
			}
		}
	}

	opt, xs, err := lp.Simplex(c, a, b, tolerance, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, nil, false, nil
		}
		return 0, nil, false, err
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = xs[i] + lower[i]
	}

	return opt + constant, out, true, nil
}
