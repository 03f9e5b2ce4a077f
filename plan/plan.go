// Package plan defines the planner's output document and the
// extractor that flattens a solved MILP into it.
package plan

import "time"

// Plan is the complete output of one planner invocation.
type Plan struct {
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`
	Objective   float64   `json:"objective"`

	GridImportMaxKW float64 `json:"grid_import_max_kw"`
	GridExportMaxKW float64 `json:"grid_export_max_kw"`

	BatteryCapacitiesKWh map[string]float64 `json:"battery_capacities_kwh,omitempty"`
	EVCapacitiesKWh      map[string]float64 `json:"ev_capacities_kwh,omitempty"`

	Slots []Slot `json:"slots"`
}

// Slot is one horizon slot's decisions and derived economics.
type Slot struct {
	Index     int       `json:"index"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	DurationS float64   `json:"duration_s"`

	GridImportKW          float64 `json:"grid_import_kw"`
	GridExportKW          float64 `json:"grid_export_kw"`
	GridImportViolationKW float64 `json:"grid_import_violation_kw"`
	GridKW                float64 `json:"grid_kw"`

	LoadKW      float64 `json:"load_kw"`
	LoadTotalKW float64 `json:"load_total_kw"`

	PriceImport float64 `json:"price_import"`
	PriceExport float64 `json:"price_export"`

	SegmentCost    float64 `json:"segment_cost"`
	CumulativeCost float64 `json:"cumulative_cost"`

	PVKW        float64            `json:"pv_kw"`
	PVInverters map[string]float64 `json:"pv_inverters"`

	BatteryChargeKW    float64 `json:"battery_charge_kw"`
	BatteryDischargeKW float64 `json:"battery_discharge_kw"`
	BatterySoCKWh      float64 `json:"battery_soc_kwh"`

	EVChargeKW float64 `json:"ev_charge_kw"`
	EVSoCKWh   float64 `json:"ev_soc_kwh"`

	InverterACNetKW float64 `json:"inverter_ac_net_kw"`

	CurtailInverters map[string]int `json:"curtail_inverters"`
	CurtailAny       bool           `json:"curtail_any"`

	ImportAllowed bool `json:"import_allowed"`
}
