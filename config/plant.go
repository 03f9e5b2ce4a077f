package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devskill-org/ems-planner/plant"
	"github.com/devskill-org/ems-planner/source"
	"github.com/devskill-org/ems-planner/timeutil"
)

// WindowConfig is the YAML form of a timeutil.Window: clock times as
// "HH:MM" strings, months as calendar numbers (1-12, empty = all).
type WindowConfig struct {
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Months []int  `yaml:"months,omitempty"`
}

func (w WindowConfig) toWindow() (timeutil.Window, error) {
	start, err := parseClockTime(w.Start)
	if err != nil {
		return timeutil.Window{}, fmt.Errorf("start: %w", err)
	}
	end, err := parseClockTime(w.End)
	if err != nil {
		return timeutil.Window{}, fmt.Errorf("end: %w", err)
	}
	months := make([]time.Month, len(w.Months))
	for i, m := range w.Months {
		months[i] = time.Month(m)
	}
	return timeutil.Window{Start: start, End: end, Months: months}, nil
}

func parseClockTime(s string) (timeutil.ClockTime, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return timeutil.ClockTime{}, fmt.Errorf("%q is not HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return timeutil.ClockTime{}, fmt.Errorf("%q is not HH:MM: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return timeutil.ClockTime{}, fmt.Errorf("%q is not HH:MM: %w", s, err)
	}
	return timeutil.ClockTime{HourOfDay: h, Minute: m}, nil
}

// GridConfig is the YAML form of plant.Grid.
type GridConfig struct {
	ImportMaxKW            float64        `yaml:"import_max_kw"`
	ExportMaxKW            float64        `yaml:"export_max_kw"`
	ImportPriceRef         string         `yaml:"import_price_ref"`
	ExportPriceRef         string         `yaml:"export_price_ref"`
	ImportPriceRealtimeRef string         `yaml:"import_price_realtime_ref,omitempty"`
	ExportPriceRealtimeRef string         `yaml:"export_price_realtime_ref,omitempty"`
	ImportForbiddenWindows []WindowConfig `yaml:"import_forbidden_windows,omitempty"`
	PriceBiasPct           *float64       `yaml:"price_bias_pct,omitempty"`
}

// BatteryConfig is the YAML form of plant.Battery.
type BatteryConfig struct {
	CapacityKWh             float64  `yaml:"capacity_kwh"`
	StorageEfficiencyPct    float64  `yaml:"storage_efficiency_pct"`
	MinSoCPct               float64  `yaml:"min_soc_pct"`
	MaxSoCPct               float64  `yaml:"max_soc_pct"`
	ReserveSoCPct           float64  `yaml:"reserve_soc_pct"`
	MaxChargeKW             *float64 `yaml:"max_charge_kw,omitempty"`
	MaxDischargeKW          *float64 `yaml:"max_discharge_kw,omitempty"`
	ChargeWearCostPerKWh    float64  `yaml:"charge_wear_cost_per_kwh"`
	DischargeWearCostPerKWh float64  `yaml:"discharge_wear_cost_per_kwh"`
	TerminalValuePerKWh     *float64 `yaml:"terminal_value_per_kwh,omitempty"`
	Terminal                string   `yaml:"terminal"` // "hard" or "adaptive"
	ShortHorizonMinutes     int      `yaml:"short_horizon_minutes,omitempty"`
	SoCRealtimeRef          string   `yaml:"soc_realtime_ref"`
}

func (b *BatteryConfig) toBattery() (*plant.Battery, error) {
	mode := plant.TerminalHard
	switch b.Terminal {
	case "", "hard":
		mode = plant.TerminalHard
	case "adaptive":
		mode = plant.TerminalAdaptive
	default:
		return nil, fmt.Errorf("unknown terminal mode %q", b.Terminal)
	}
	return &plant.Battery{
		CapacityKWh:             b.CapacityKWh,
		StorageEfficiencyPct:    b.StorageEfficiencyPct,
		MinSoCPct:               b.MinSoCPct,
		MaxSoCPct:               b.MaxSoCPct,
		ReserveSoCPct:           b.ReserveSoCPct,
		MaxChargeKW:             b.MaxChargeKW,
		MaxDischargeKW:          b.MaxDischargeKW,
		ChargeWearCostPerKWh:    b.ChargeWearCostPerKWh,
		DischargeWearCostPerKWh: b.DischargeWearCostPerKWh,
		TerminalValuePerKWh:     b.TerminalValuePerKWh,
		Terminal:                mode,
		ShortHorizonMinutes:     b.ShortHorizonMinutes,
		SoCRealtimeRef:          source.EntityRef(b.SoCRealtimeRef),
	}, nil
}

// InverterConfig is the YAML form of plant.Inverter.
type InverterConfig struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	PeakPowerKW   float64        `yaml:"peak_power_kw"`
	Curtailment   string         `yaml:"curtailment"` // "none", "binary", "load_aware"
	PVForecastRef string         `yaml:"pv_forecast_ref"`
	PVRealtimeRef string         `yaml:"pv_realtime_ref,omitempty"`
	Battery       *BatteryConfig `yaml:"battery,omitempty"`
}

func (i *InverterConfig) toInverter() (plant.Inverter, error) {
	var mode plant.CurtailmentMode
	switch i.Curtailment {
	case "", "none":
		mode = plant.CurtailmentNone
	case "binary":
		mode = plant.CurtailmentBinary
	case "load_aware":
		mode = plant.CurtailmentLoadAware
	default:
		return plant.Inverter{}, fmt.Errorf("inverter %s: unknown curtailment mode %q", i.ID, i.Curtailment)
	}

	inv := plant.Inverter{
		ID:            i.ID,
		Name:          i.Name,
		PeakPowerKW:   i.PeakPowerKW,
		Curtailment:   mode,
		PVForecastRef: source.EntityRef(i.PVForecastRef),
	}
	if i.PVRealtimeRef != "" {
		ref := source.EntityRef(i.PVRealtimeRef)
		inv.PVRealtimeRef = &ref
	}
	if i.Battery != nil {
		bat, err := i.Battery.toBattery()
		if err != nil {
			return plant.Inverter{}, fmt.Errorf("inverter %s: %w", i.ID, err)
		}
		inv.Battery = bat
	}
	return inv, nil
}

// SoCIncentiveConfig is the YAML form of plant.SoCIncentive.
type SoCIncentiveConfig struct {
	TargetPct    float64 `yaml:"target_pct"`
	RewardPerKWh float64 `yaml:"reward_per_kwh"`
}

// EVConfig is the YAML form of plant.ControlledEV.
type EVConfig struct {
	ID                  string               `yaml:"id"`
	MinChargeKW         float64              `yaml:"min_charge_kw"`
	MaxChargeKW         float64              `yaml:"max_charge_kw"`
	CapacityKWh         float64              `yaml:"capacity_kwh"`
	ConnectedRef        string               `yaml:"connected_ref"`
	PowerRealtimeRef    string               `yaml:"power_realtime_ref"`
	SoCRealtimeRef      string               `yaml:"soc_realtime_ref"`
	CanConnect          bool                 `yaml:"can_connect,omitempty"`
	AllowedConnectTimes []WindowConfig       `yaml:"allowed_connect_times,omitempty"`
	ConnectGraceMinutes int                  `yaml:"connect_grace_minutes,omitempty"`
	SoCIncentives       []SoCIncentiveConfig `yaml:"soc_incentives,omitempty"`
	SwitchPenalty       *float64             `yaml:"switch_penalty,omitempty"`
	DeadlineTarget      *DeadlineConfig      `yaml:"deadline_target,omitempty"`
}

// DeadlineConfig is the YAML form of plant.DeadlineTarget.
type DeadlineConfig struct {
	Time      time.Time `yaml:"time"`
	TargetPct float64   `yaml:"target_pct"`
}

func (e *EVConfig) toEV() (plant.ControlledEV, error) {
	windows, err := toWindows(e.AllowedConnectTimes)
	if err != nil {
		return plant.ControlledEV{}, fmt.Errorf("ev %s: allowed_connect_times: %w", e.ID, err)
	}

	incentives := make([]plant.SoCIncentive, len(e.SoCIncentives))
	for i, b := range e.SoCIncentives {
		incentives[i] = plant.SoCIncentive{TargetPct: b.TargetPct, RewardPerKWh: b.RewardPerKWh}
	}

	var deadline *plant.DeadlineTarget
	if e.DeadlineTarget != nil {
		deadline = &plant.DeadlineTarget{Time: e.DeadlineTarget.Time, TargetPct: e.DeadlineTarget.TargetPct}
	}

	return plant.ControlledEV{
		ID:                  e.ID,
		MinChargeKW:         e.MinChargeKW,
		MaxChargeKW:         e.MaxChargeKW,
		CapacityKWh:         e.CapacityKWh,
		ConnectedRef:        source.EntityRef(e.ConnectedRef),
		PowerRealtimeRef:    source.EntityRef(e.PowerRealtimeRef),
		SoCRealtimeRef:      source.EntityRef(e.SoCRealtimeRef),
		CanConnect:          e.CanConnect,
		AllowedConnectTimes: windows,
		ConnectGraceMinutes: e.ConnectGraceMinutes,
		SoCIncentives:       incentives,
		SwitchPenalty:       e.SwitchPenalty,
		DeadlineTarget:      deadline,
	}, nil
}

func toWindows(cfgs []WindowConfig) ([]timeutil.Window, error) {
	windows := make([]timeutil.Window, len(cfgs))
	for i, w := range cfgs {
		win, err := w.toWindow()
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		windows[i] = win
	}
	return windows, nil
}

// PlantConfig is the YAML form of plant.Plant's topology (excluding
// loads, which get their own top-level key).
type PlantConfig struct {
	Grid      GridConfig       `yaml:"grid"`
	Inverters []InverterConfig `yaml:"inverters,omitempty"`
	EVs       []EVConfig       `yaml:"evs,omitempty"`
}

// LoadsConfig names the entities the aggregate site load is resolved from.
type LoadsConfig struct {
	BaseLoadForecastRef string `yaml:"base_load_forecast_ref"`
	BaseLoadRealtimeRef string `yaml:"base_load_realtime_ref,omitempty"`
}

// ToPlant converts the YAML-shaped configuration into a plant.Plant,
// ready for plant.Plant.Validate.
func (r *Root) ToPlant() (*plant.Plant, error) {
	windows, err := toWindows(r.Plant.Grid.ImportForbiddenWindows)
	if err != nil {
		return nil, fmt.Errorf("plant.grid.import_forbidden_windows: %w", err)
	}

	p := &plant.Plant{
		Grid: plant.Grid{
			ImportMaxKW:            r.Plant.Grid.ImportMaxKW,
			ExportMaxKW:            r.Plant.Grid.ExportMaxKW,
			ImportPriceRef:         source.EntityRef(r.Plant.Grid.ImportPriceRef),
			ExportPriceRef:         source.EntityRef(r.Plant.Grid.ExportPriceRef),
			ImportForbiddenWindows: windows,
			PriceBiasPct:           r.Plant.Grid.PriceBiasPct,
		},
		LoadForecastRef: source.EntityRef(r.Loads.BaseLoadForecastRef),
	}
	if r.Plant.Grid.ImportPriceRealtimeRef != "" {
		ref := source.EntityRef(r.Plant.Grid.ImportPriceRealtimeRef)
		p.Grid.ImportPriceRealtimeRef = &ref
	}
	if r.Plant.Grid.ExportPriceRealtimeRef != "" {
		ref := source.EntityRef(r.Plant.Grid.ExportPriceRealtimeRef)
		p.Grid.ExportPriceRealtimeRef = &ref
	}
	if r.Loads.BaseLoadRealtimeRef != "" {
		ref := source.EntityRef(r.Loads.BaseLoadRealtimeRef)
		p.LoadRealtimeRef = &ref
	}

	for i := range r.Plant.Inverters {
		inv, err := r.Plant.Inverters[i].toInverter()
		if err != nil {
			return nil, fmt.Errorf("plant.inverters[%d]: %w", i, err)
		}
		p.Inverters = append(p.Inverters, inv)
	}

	for i := range r.Plant.EVs {
		ev, err := r.Plant.EVs[i].toEV()
		if err != nil {
			return nil, fmt.Errorf("plant.evs[%d]: %w", i, err)
		}
		p.EVs = append(p.EVs, ev)
	}

	return p, nil
}
