// Package milp provides a small solver-agnostic mixed-integer linear
// program representation plus a branch-and-bound solver built on
// gonum's pure-Go simplex kernel. Callers build a Problem (variables
// with kind and bounds, linear constraint rows, a linear objective)
// without reference to any particular solver API, per the pluggable
// adapter design this module follows.
package milp

import "fmt"

// Kind distinguishes a continuous decision variable from one
// restricted to {0, 1}.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

// Op is a constraint row's relational operator.
type Op int

const (
	LE Op = iota
	GE
	EQ
)

// Var is one decision variable. Bounds must be finite: the simplex
// kernel this solver is built on has no notion of an unbounded
// variable, so a variable without a natural bound (e.g. a signed net
// power flow) must be given a large-but-finite Upper/Lower by the
// caller.
type Var struct {
	Name  string
	Kind  Kind
	Lower float64
	Upper float64
}

// Row is one linear constraint: sum(Coeffs[i]*x[i]) Op RHS.
type Row struct {
	Name   string
	Coeffs map[int]float64
	Op     Op
	RHS    float64
}

// Problem is a complete MILP: minimize Obj subject to Rows, with each
// variable restricted to its declared Kind and [Lower, Upper].
type Problem struct {
	Vars []Var
	Rows []Row
	Obj  map[int]float64
}

// NewProblem returns an empty problem ready for AddVar/AddRow calls.
func NewProblem() *Problem {
	return &Problem{Obj: make(map[int]float64)}
}

// AddVar registers a variable and returns its index, used to
// reference it from AddRow and SetObjCoeff.
func (p *Problem) AddVar(name string, kind Kind, lower, upper float64) int {
	if kind == Binary {
		lower, upper = 0, 1
	}
	idx := len(p.Vars)
	p.Vars = append(p.Vars, Var{Name: name, Kind: kind, Lower: lower, Upper: upper})
	return idx
}

// AddRow appends a constraint row.
func (p *Problem) AddRow(name string, coeffs map[int]float64, op Op, rhs float64) {
	p.Rows = append(p.Rows, Row{Name: name, Coeffs: coeffs, Op: op, RHS: rhs})
}

// AddObjCoeff adds coeff to variable idx's objective coefficient
// (coefficients from multiple contributing terms accumulate).
func (p *Problem) AddObjCoeff(idx int, coeff float64) {
	p.Obj[idx] += coeff
}

// Status reports how a Solve call resolved.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "error"
	}
}

// Solution is the best integral assignment found.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the solved value of variable idx.
func (s *Solution) Value(idx int) float64 {
	return s.Values[idx]
}

// InfeasibleError reports that branch-and-bound exhausted the search
// tree without finding an integral feasible solution.
type InfeasibleError struct{}

func (e *InfeasibleError) Error() string { return "milp: problem is infeasible" }

// SolverError wraps a failure from the underlying LP kernel.
type SolverError struct {
	Stage string
	Err   error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("milp: %s: %v", e.Stage, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }
