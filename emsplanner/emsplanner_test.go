package emsplanner

import (
	"context"
	"testing"
	"time"

	"github.com/devskill-org/ems-planner/plant"
	"github.com/devskill-org/ems-planner/source"
	"github.com/devskill-org/ems-planner/source/fixture"
)

func TestPlanRejectsInvalidPlant(t *testing.T) {
	now := testNow()
	data := newFixtureData()
	p := &plant.Plant{
		Grid:            plant.Grid{ImportMaxKW: -1},
		LoadForecastRef: "load",
	}
	pl := New(p, fixture.New(data, now), flatHorizonConfig(), time.UTC)
	if _, err := pl.Plan(context.Background(), now); err == nil {
		t.Fatal("expected Plan() to reject a negative import_max_kw")
	}
}

func TestPlanPropagatesMissingForecastError(t *testing.T) {
	now := testNow()
	data := newFixtureData()
	// price_import is never recorded.
	data.PriceForecasts["price_export"] = flatInterval(now, 60, 0.10)
	data.PowerForecasts["load"] = flatInterval(now, 60, 1.0)

	p := &plant.Plant{
		Grid: plant.Grid{
			ImportMaxKW:    10,
			ExportMaxKW:    10,
			ImportPriceRef: "price_import",
			ExportPriceRef: "price_export",
		},
		LoadForecastRef: "load",
	}
	pl := New(p, fixture.New(data, now), flatHorizonConfig(), time.UTC)
	if _, err := pl.Plan(context.Background(), now); err == nil {
		t.Fatal("expected Plan() to surface the missing price_import forecast")
	}
}

// When now sits past the slot-0 boundary, the forecasts no longer
// cover the whole first slot; the realtime sensors must supply it.
func TestPlanRealtimeSlot0Overrides(t *testing.T) {
	now := testNow().Add(5 * time.Minute) // 00:05, slot 0 floors to 00:00
	data := newFixtureData()
	data.PriceForecasts["price_import"] = flatInterval(now, 60, 0.30)
	data.PriceForecasts["price_export"] = flatInterval(now, 60, 0.10)
	data.PowerForecasts["load"] = flatInterval(now, 60, 1.5)
	data.Scalars["price_import_now"] = 0.25
	data.Scalars["price_export_now"] = 0.05
	data.Scalars["load_now"] = 1.0

	impRef := source.EntityRef("price_import_now")
	expRef := source.EntityRef("price_export_now")
	loadRef := source.EntityRef("load_now")
	p := &plant.Plant{
		Grid: plant.Grid{
			ImportMaxKW:            10,
			ExportMaxKW:            10,
			ImportPriceRef:         "price_import",
			ExportPriceRef:         "price_export",
			ImportPriceRealtimeRef: &impRef,
			ExportPriceRealtimeRef: &expRef,
		},
		LoadForecastRef: "load",
		LoadRealtimeRef: &loadRef,
	}

	pl := New(p, fixture.New(data, now), flatHorizonConfig(), time.UTC)
	result, err := pl.Plan(context.Background(), now)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	slot := result.Slots[0]
	if slot.PriceImport != 0.25 {
		t.Errorf("PriceImport = %v, want realtime override 0.25", slot.PriceImport)
	}
	if slot.LoadKW != 1.0 {
		t.Errorf("LoadKW = %v, want realtime override 1.0", slot.LoadKW)
	}
	if slot.GridImportKW != 1.0 {
		t.Errorf("GridImportKW = %v, want 1.0", slot.GridImportKW)
	}
}

func TestPlanRejectsCoverageShorterThanMinHorizon(t *testing.T) {
	now := testNow()
	data := newFixtureData()
	data.PriceForecasts["price_import"] = flatInterval(now, 30, 0.10)
	data.PriceForecasts["price_export"] = flatInterval(now, 30, 0.05)
	data.PowerForecasts["load"] = flatInterval(now, 30, 1.0)

	p := &plant.Plant{
		Grid: plant.Grid{
			ImportMaxKW:    10,
			ExportMaxKW:    10,
			ImportPriceRef: "price_import",
			ExportPriceRef: "price_export",
		},
		LoadForecastRef: "load",
	}
	cfg := flatHorizonConfig()
	cfg.MinHorizonMinutes = 60
	pl := New(p, fixture.New(data, now), cfg, time.UTC)
	if _, err := pl.Plan(context.Background(), now); err == nil {
		t.Fatal("expected Plan() to reject a 30-minute forecast against a 60-minute min horizon")
	}
}
