package fixture

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/devskill-org/ems-planner/source"
)

func TestLoadFromReaderRoundTrip(t *testing.T) {
	raw := `{
		"scalars": {"battery.soc": 55.5},
		"power_forecasts": {
			"pv.forecast": [
				{"start": "2026-07-31T10:00:00Z", "end": "2026-07-31T11:00:00Z", "value": 3.2}
			]
		},
		"price_forecasts": {},
		"pv_peak_kw": {"pv.main": 6.6},
		"latitude": 51.5,
		"longitude": -0.1
	}`

	data, err := LoadFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if data.Scalars["battery.soc"] != 55.5 {
		t.Errorf("Scalars[battery.soc] = %v, want 55.5", data.Scalars["battery.soc"])
	}
	if len(data.PowerForecasts["pv.forecast"]) != 1 {
		t.Fatalf("PowerForecasts[pv.forecast] len = %d, want 1", len(data.PowerForecasts["pv.forecast"]))
	}
	if data.PVPeakKW["pv.main"] != 6.6 {
		t.Errorf("PVPeakKW[pv.main] = %v, want 6.6", data.PVPeakKW["pv.main"])
	}
}

func TestLoadFromReaderMissingCollectionsInitialized(t *testing.T) {
	data, err := LoadFromReader(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if data.Scalars == nil || data.PowerForecasts == nil || data.PriceForecasts == nil || data.PVPeakKW == nil {
		t.Fatalf("expected all maps pre-initialized, got %+v", data)
	}
}

func TestResolverResolveScalarMissing(t *testing.T) {
	data, _ := LoadFromReader(strings.NewReader(`{}`))
	r := New(data, time.Now())

	_, err := r.ResolveScalar(context.Background(), source.EntityRef("missing"))
	if err == nil {
		t.Fatal("expected error for missing scalar")
	}
	var dsErr *source.DataSourceError
	if !asDataSourceError(err, &dsErr) {
		t.Fatalf("error type = %T, want *source.DataSourceError", err)
	}
}

func TestResolverResolvePowerForecast(t *testing.T) {
	start := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	raw := `{
		"power_forecasts": {
			"load.site": [
				{"start": "2026-07-31T10:00:00Z", "end": "2026-07-31T11:00:00Z", "value": 1.5},
				{"start": "2026-07-31T11:00:00Z", "end": "2026-07-31T12:00:00Z", "value": 2.0}
			]
		}
	}`
	data, err := LoadFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	r := New(data, start)

	got, err := r.ResolvePowerForecast(context.Background(), source.EntityRef("load.site"), 90)
	if err != nil {
		t.Fatalf("ResolvePowerForecast() error = %v", err)
	}
	if len(got) != 2 || got[1].Value != 2.0 {
		t.Fatalf("ResolvePowerForecast() = %+v", got)
	}
}

func TestResolverResolvePowerForecastInsufficientCoverage(t *testing.T) {
	raw := `{
		"power_forecasts": {
			"load.site": [
				{"start": "2026-07-31T10:00:00Z", "end": "2026-07-31T11:00:00Z", "value": 1.5}
			]
		}
	}`
	data, err := LoadFromReader(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	r := New(data, time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC))

	_, err = r.ResolvePowerForecast(context.Background(), source.EntityRef("load.site"), 180)
	if err == nil {
		t.Fatal("expected coverage error")
	}
}

func TestResolverResolveHistoryProfileDaylightShape(t *testing.T) {
	data, _ := LoadFromReader(strings.NewReader(`{}`))
	data.PVPeakKW["pv.main"] = 5.0
	data.Latitude = 51.5
	data.Longitude = -0.1

	noon := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	rNoon := New(data, noon)
	got, err := rNoon.ResolveHistoryProfile(context.Background(), source.EntityRef("pv.main"), 14, 60, 1)
	if err != nil {
		t.Fatalf("ResolveHistoryProfile() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Value <= 0 {
		t.Errorf("midday output = %v, want > 0", got[0].Value)
	}

	rMidnight := New(data, midnight)
	gotNight, err := rMidnight.ResolveHistoryProfile(context.Background(), source.EntityRef("pv.main"), 14, 60, 1)
	if err != nil {
		t.Fatalf("ResolveHistoryProfile() error = %v", err)
	}
	if gotNight[0].Value != 0 {
		t.Errorf("midnight output = %v, want 0", gotNight[0].Value)
	}
}

func TestResolverResolveHistoryProfileMissingPeak(t *testing.T) {
	data, _ := LoadFromReader(strings.NewReader(`{}`))
	r := New(data, time.Now())

	_, err := r.ResolveHistoryProfile(context.Background(), source.EntityRef("pv.unknown"), 14, 60, 6)
	if err == nil {
		t.Fatal("expected error for missing pv_peak_kw entry")
	}
}

func asDataSourceError(err error, target **source.DataSourceError) bool {
	dsErr, ok := err.(*source.DataSourceError)
	if ok {
		*target = dsErr
	}
	return ok
}
