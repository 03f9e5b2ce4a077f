// Package model builds the MILP that the planner solves: given a
// horizon, a plant topology, and the aligned forecasts/realtime
// overrides for that horizon, it produces a milp.Problem plus the
// variable indices needed to read a solution back out.
package model

import (
	"fmt"
	"time"

	"github.com/devskill-org/ems-planner/horizon"
	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/plant"
)

// Inputs carries the aligned series and realtime overrides the
// builder needs. Series are one value per horizon slot; the slot-0
// realtime-override convention has already been applied by the
// caller via forecast.Align before these arrive here.
type Inputs struct {
	Now      time.Time
	Location *time.Location

	ImportPrice []float64 // currency/kWh, per slot
	ExportPrice []float64 // currency/kWh, per slot, before price_bias_pct
	Load        []float64 // kW, per slot, aligned base load

	InverterPV map[string][]float64 // inverter id -> kW per slot

	BatterySoCNowPct map[string]float64 // inverter id -> realtime battery SoC pct

	EVConnectedNow map[string]bool    // ev id -> realtime connection state
	EVPowerNowKW   map[string]float64 // ev id -> realtime charge power
	EVSoCNowPct    map[string]float64 // ev id -> realtime SoC pct
}

// Indices locates every decision variable the extractor needs inside
// the solved milp.Problem.
type Indices struct {
	N int

	Import      []int
	Export      []int
	OnImport    []int
	ImportSlack []int
	AllowImport []bool // not a variable; the gating result itself

	PV    map[string][]int
	ACNet map[string][]int
	Curt  map[string][]int // empty for CurtailmentNone

	BatCharge    map[string][]int
	BatDischarge map[string][]int
	BatMode      map[string][]int
	BatEnergy    map[string][]int // length N+1
	BatGate      map[string][]int // reserve/export gate binary, length N
	BatSlack     map[string]int   // terminal adaptive shortfall slack, -1 if unused

	EVPower    map[string][]int
	EVOn       map[string][]int // empty when min_power_kw == 0
	EVEnergy   map[string][]int // length N+1
	EVRamp     map[string][]int
	EVAnchor   map[string]int
	EVSegments map[string][]int // per incentive band, then the trailing absorber
	EVSwitch   map[string][]int // empty unless switch_penalty with min power
}

// ConfigInvalidError reports a model-build-time topology problem that
// was not caught by plant.Validate (e.g. a resolved input missing for
// a referenced entity).
type ConfigInvalidError struct {
	Field   string
	Message string
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Message)
}

// builder accumulates a milp.Problem and the Indices describing it.
type builder struct {
	problem *milp.Problem
	idx     *Indices
	horizon *horizon.Horizon
	plant   *plant.Plant
	in      Inputs
}

// Build constructs the complete MILP for one planner invocation.
func Build(h *horizon.Horizon, p *plant.Plant, in Inputs) (*milp.Problem, *Indices, error) {
	n := h.N()
	b := &builder{
		problem: milp.NewProblem(),
		idx: &Indices{
			N:            n,
			PV:           make(map[string][]int),
			ACNet:        make(map[string][]int),
			Curt:         make(map[string][]int),
			BatCharge:    make(map[string][]int),
			BatDischarge: make(map[string][]int),
			BatMode:      make(map[string][]int),
			BatEnergy:    make(map[string][]int),
			BatGate:      make(map[string][]int),
			BatSlack:     make(map[string]int),
			EVPower:      make(map[string][]int),
			EVOn:         make(map[string][]int),
			EVEnergy:     make(map[string][]int),
			EVRamp:       make(map[string][]int),
			EVAnchor:     make(map[string]int),
			EVSegments:   make(map[string][]int),
			EVSwitch:     make(map[string][]int),
		},
		horizon: h,
		plant:   p,
		in:      in,
	}

	if err := b.buildGrid(); err != nil {
		return nil, nil, err
	}
	for _, inv := range p.Inverters {
		if err := b.buildInverter(inv); err != nil {
			return nil, nil, err
		}
	}
	for _, ev := range p.EVs {
		if err := b.buildEV(ev); err != nil {
			return nil, nil, err
		}
	}
	if err := b.buildBalance(); err != nil {
		return nil, nil, err
	}
	b.buildObjective()

	return b.problem, b.idx, nil
}

func (b *builder) n() int { return b.idx.N }

func (b *builder) dt(t int) float64 { return b.horizon.Slots[t].DurationH }
