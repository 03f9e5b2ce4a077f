// Package plant provides a typed representation of an EMS's topology:
// the grid connection, PV inverters (each with an optional battery),
// and controllable loads. Values here are read-only once loaded; the
// MILP builder consumes a *Plant without mutating it.
package plant

import (
	"fmt"
	"time"

	"github.com/devskill-org/ems-planner/source"
	"github.com/devskill-org/ems-planner/timeutil"
)

// CurtailmentMode selects how an inverter's PV output may be reduced.
type CurtailmentMode int

const (
	// CurtailmentNone forces PV output to track the forecast exactly.
	CurtailmentNone CurtailmentMode = iota
	// CurtailmentBinary allows an all-or-nothing reduction per slot.
	CurtailmentBinary
	// CurtailmentLoadAware couples PV reduction to blocking export,
	// letting PV follow load.
	CurtailmentLoadAware
)

func (m CurtailmentMode) String() string {
	switch m {
	case CurtailmentNone:
		return "none"
	case CurtailmentBinary:
		return "binary"
	case CurtailmentLoadAware:
		return "load_aware"
	default:
		return "unknown"
	}
}

// TerminalMode selects how a battery's end-of-horizon SoC is handled.
type TerminalMode int

const (
	// TerminalHard requires E_b[N] >= E_b[0].
	TerminalHard TerminalMode = iota
	// TerminalAdaptive relaxes the target toward reserve_soc as the
	// horizon shrinks below ShortHorizonMinutes, via a penalized slack.
	TerminalAdaptive
)

// Grid is the single point of common coupling.
type Grid struct {
	ImportMaxKW float64
	ExportMaxKW float64

	ImportPriceRef source.EntityRef
	ExportPriceRef source.EntityRef

	// Realtime price sensors, when available, supply the slot-0
	// override where the price forecast does not reach back before now.
	ImportPriceRealtimeRef *source.EntityRef
	ExportPriceRealtimeRef *source.EntityRef

	// ImportForbiddenWindows lists local-time-of-day windows (optionally
	// month-restricted) during which import is penalized rather than
	// disallowed outright.
	ImportForbiddenWindows []timeutil.Window

	// PriceBiasPct, when non-nil, scales export price before use
	// (e.g. to model a feed-in tariff markup/markdown).
	PriceBiasPct *float64
}

// Battery models one inverter-attached storage unit.
type Battery struct {
	CapacityKWh             float64
	StorageEfficiencyPct    float64 // round-trip, 0-100
	MinSoCPct               float64
	MaxSoCPct               float64
	ReserveSoCPct           float64
	MaxChargeKW             *float64
	MaxDischargeKW          *float64
	ChargeWearCostPerKWh    float64
	DischargeWearCostPerKWh float64

	// TerminalValuePerKWh, when non-nil, prices terminal SoC directly
	// in the objective rather than (or in addition to) constraining it.
	TerminalValuePerKWh *float64

	Terminal            TerminalMode
	ShortHorizonMinutes int // only meaningful when Terminal == TerminalAdaptive

	SoCRealtimeRef source.EntityRef
}

// Inverter is a PV string with an optional attached battery.
type Inverter struct {
	ID          string
	Name        string
	PeakPowerKW float64
	Curtailment CurtailmentMode

	PVForecastRef source.EntityRef
	PVRealtimeRef *source.EntityRef // optional slot-0 override

	Battery *Battery
}

// SoCIncentive is one reward band of an EV's piecewise incentive
// schedule: reaching TargetPct earns RewardPerKWh for the energy
// between it and the previous band's target (or the realtime SoC,
// when that is higher).
type SoCIncentive struct {
	TargetPct    float64
	RewardPerKWh float64
}

// DeadlineTarget requires an EV to hold at least TargetPct at the
// first slot boundary at or after Time. No constraint applies when
// Time is after the horizon's end; a Time before the horizon start
// binds the end of slot 0.
type DeadlineTarget struct {
	Time      time.Time
	TargetPct float64
}

// ControlledEV is a chargeable load the planner may schedule.
type ControlledEV struct {
	ID string

	MinChargeKW float64
	MaxChargeKW float64
	CapacityKWh float64

	ConnectedRef     source.EntityRef
	PowerRealtimeRef source.EntityRef
	SoCRealtimeRef   source.EntityRef

	// CanConnect, when true, allows scheduling even while not
	// currently connected, subject to AllowedConnectTimes and
	// ConnectGraceMinutes.
	CanConnect          bool
	AllowedConnectTimes []timeutil.Window
	ConnectGraceMinutes int

	// SoCIncentives must be sorted by non-decreasing TargetPct.
	SoCIncentives []SoCIncentive

	// SwitchPenalty, when non-nil and MinChargeKW > 0, prices each
	// on/off transition of the charger across the horizon.
	SwitchPenalty  *float64
	DeadlineTarget *DeadlineTarget
}

// Plant is the full topology the planner solves over.
type Plant struct {
	Grid      Grid
	Inverters []Inverter
	EVs       []ControlledEV

	LoadForecastRef source.EntityRef
	LoadRealtimeRef *source.EntityRef
}

// ConfigInvalidError reports a topology or parameter violation
// detected by Validate.
type ConfigInvalidError struct {
	Field   string
	Message string
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("plant: invalid %s: %s", e.Field, e.Message)
}

// Validate checks the invariants Validate's callers (the MILP
// builder) rely on: non-negative capacities, consistent SoC bounds,
// and monotonic EV incentive bands.
func (p *Plant) Validate() error {
	if p.Grid.ImportMaxKW < 0 {
		return &ConfigInvalidError{Field: "grid.import_max_kw", Message: "must be non-negative"}
	}
	if p.Grid.ExportMaxKW < 0 {
		return &ConfigInvalidError{Field: "grid.export_max_kw", Message: "must be non-negative"}
	}

	seen := make(map[string]bool, len(p.Inverters))
	for _, inv := range p.Inverters {
		if inv.ID == "" {
			return &ConfigInvalidError{Field: "inverter.id", Message: "must not be empty"}
		}
		if seen[inv.ID] {
			return &ConfigInvalidError{Field: "inverter.id", Message: fmt.Sprintf("duplicate id %q", inv.ID)}
		}
		seen[inv.ID] = true

		if inv.PeakPowerKW < 0 {
			return &ConfigInvalidError{Field: fmt.Sprintf("inverter[%s].peak_power_kw", inv.ID), Message: "must be non-negative"}
		}
		if inv.Battery != nil {
			if err := inv.Battery.validate(inv.ID); err != nil {
				return err
			}
		}
	}

	evSeen := make(map[string]bool, len(p.EVs))
	for _, ev := range p.EVs {
		if ev.ID == "" {
			return &ConfigInvalidError{Field: "ev.id", Message: "must not be empty"}
		}
		if evSeen[ev.ID] {
			return &ConfigInvalidError{Field: "ev.id", Message: fmt.Sprintf("duplicate id %q", ev.ID)}
		}
		evSeen[ev.ID] = true

		if ev.CapacityKWh <= 0 {
			return &ConfigInvalidError{Field: fmt.Sprintf("ev[%s].capacity_kwh", ev.ID), Message: "must be positive"}
		}
		if ev.MinChargeKW < 0 {
			return &ConfigInvalidError{Field: fmt.Sprintf("ev[%s].min_charge_kw", ev.ID), Message: "must be non-negative"}
		}
		if ev.MaxChargeKW < ev.MinChargeKW {
			return &ConfigInvalidError{Field: fmt.Sprintf("ev[%s].max_charge_kw", ev.ID), Message: "must be >= min_charge_kw"}
		}

		if d := ev.DeadlineTarget; d != nil && (d.TargetPct < 0 || d.TargetPct > 100) {
			return &ConfigInvalidError{
				Field:   fmt.Sprintf("ev[%s].deadline_target.target_pct", ev.ID),
				Message: "must be between 0 and 100",
			}
		}

		prev := -1.0
		for i, band := range ev.SoCIncentives {
			if band.TargetPct < prev {
				return &ConfigInvalidError{
					Field:   fmt.Sprintf("ev[%s].soc_incentives[%d].target_pct", ev.ID, i),
					Message: "incentive targets must be non-decreasing",
				}
			}
			if band.TargetPct < 0 || band.TargetPct > 100 {
				return &ConfigInvalidError{
					Field:   fmt.Sprintf("ev[%s].soc_incentives[%d].target_pct", ev.ID, i),
					Message: "must be between 0 and 100",
				}
			}
			prev = band.TargetPct
		}
	}

	return nil
}

func (b *Battery) validate(inverterID string) error {
	prefix := fmt.Sprintf("inverter[%s].battery", inverterID)

	if b.CapacityKWh <= 0 {
		return &ConfigInvalidError{Field: prefix + ".capacity_kwh", Message: "must be positive"}
	}
	if b.StorageEfficiencyPct <= 0 || b.StorageEfficiencyPct > 100 {
		return &ConfigInvalidError{Field: prefix + ".storage_efficiency_pct", Message: "must be in (0, 100]"}
	}
	if b.MinSoCPct < 0 || b.MaxSoCPct > 100 {
		return &ConfigInvalidError{Field: prefix + ".{min,max}_soc_pct", Message: "must be within [0, 100]"}
	}
	if b.MinSoCPct > b.MaxSoCPct {
		return &ConfigInvalidError{Field: prefix + ".min_soc_pct", Message: "must not exceed max_soc_pct"}
	}
	if b.ReserveSoCPct < b.MinSoCPct || b.ReserveSoCPct > b.MaxSoCPct {
		return &ConfigInvalidError{Field: prefix + ".reserve_soc_pct", Message: "must lie within [min_soc_pct, max_soc_pct]"}
	}
	if b.MaxChargeKW != nil && *b.MaxChargeKW < 0 {
		return &ConfigInvalidError{Field: prefix + ".max_charge_kw", Message: "must be non-negative"}
	}
	if b.MaxDischargeKW != nil && *b.MaxDischargeKW < 0 {
		return &ConfigInvalidError{Field: prefix + ".max_discharge_kw", Message: "must be non-negative"}
	}
	return nil
}
