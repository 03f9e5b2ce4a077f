package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
ems:
  timestep_minutes: 30
  high_res_timestep_minutes: 5
  high_res_horizon_minutes: 60
  min_horizon_minutes: 180
  location: "Europe/Riga"
plant:
  grid:
    import_max_kw: 10
    export_max_kw: 10
    import_price_ref: "sensor.import_price"
    export_price_ref: "sensor.export_price"
    import_forbidden_windows:
      - start: "17:00"
        end: "20:00"
        months: [11, 12, 1, 2]
  inverters:
    - id: inv1
      peak_power_kw: 5
      curtailment: load_aware
      pv_forecast_ref: "sensor.pv_forecast"
      battery:
        capacity_kwh: 10
        storage_efficiency_pct: 92
        min_soc_pct: 0
        max_soc_pct: 100
        reserve_soc_pct: 10
        terminal: hard
        soc_realtime_ref: "sensor.battery_soc"
  evs:
    - id: ev1
      max_charge_kw: 7
      capacity_kwh: 50
      connected_ref: "binary_sensor.ev_connected"
      power_realtime_ref: "sensor.ev_power"
      soc_realtime_ref: "sensor.ev_soc"
      soc_incentives:
        - target_pct: 50
          reward_per_kwh: 0.20
        - target_pct: 80
          reward_per_kwh: 0.05
loads:
  base_load_forecast_ref: "sensor.load_forecast"
`

func TestLoadFromReaderAndToPlant(t *testing.T) {
	root, err := LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if root.EMS.TimestepMinutes != 30 {
		t.Errorf("TimestepMinutes = %d, want 30", root.EMS.TimestepMinutes)
	}

	p, err := root.ToPlant()
	if err != nil {
		t.Fatalf("ToPlant() error = %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("plant.Validate() error = %v", err)
	}
	if len(p.Inverters) != 1 || p.Inverters[0].Battery == nil {
		t.Fatalf("expected 1 inverter with battery, got %+v", p.Inverters)
	}
	if len(p.Grid.ImportForbiddenWindows) != 1 {
		t.Fatalf("expected 1 import forbidden window, got %d", len(p.Grid.ImportForbiddenWindows))
	}
	if len(p.EVs) != 1 || len(p.EVs[0].SoCIncentives) != 2 {
		t.Fatalf("expected 1 ev with 2 incentive bands, got %+v", p.EVs)
	}
}

func TestValidateRejectsMismatchedHighRes(t *testing.T) {
	bad := `
ems:
  timestep_minutes: 30
  high_res_timestep_minutes: 5
  min_horizon_minutes: 180
`
	_, err := LoadFromReader(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for high_res_timestep_minutes without high_res_horizon_minutes")
	}
}

func TestValidateRejectsZeroTimestep(t *testing.T) {
	bad := `
ems:
  timestep_minutes: 0
  min_horizon_minutes: 180
`
	_, err := LoadFromReader(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for zero timestep_minutes")
	}
}

func TestParseClockTimeInvalid(t *testing.T) {
	w := WindowConfig{Start: "not-a-time", End: "20:00"}
	if _, err := w.toWindow(); err == nil {
		t.Fatal("expected error for malformed clock time")
	}
}
