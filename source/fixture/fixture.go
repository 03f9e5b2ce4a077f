// Package fixture provides a filesystem-JSON-backed source.Resolver
// used for tests, the record-scenario/refresh-baseline CLI verbs, and
// fixture replay. It is the one concrete Resolver this module ships;
// live Home Assistant fetching belongs to the worker, not the planner.
package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devskill-org/ems-planner/forecast"
)

// Interval is the JSON-friendly wire form of a forecast.Interval.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Value float64   `json:"value"`
}

func (iv Interval) toForecast() forecast.Interval {
	return forecast.Interval{Start: iv.Start, End: iv.End, Value: iv.Value}
}

// Data is the resolved-inputs document captured by record-scenario and
// replayed by refresh-baseline and tests (the fixture.json file of a
// recorded scenario).
type Data struct {
	Scalars        map[string]float64    `json:"scalars"`
	PowerForecasts map[string][]Interval `json:"power_forecasts"`
	PriceForecasts map[string][]Interval `json:"price_forecasts"`

	// PVPeakKW gives the peak output used by ResolveHistoryProfile's
	// sun-altitude synthesizer, keyed by entity ref.
	PVPeakKW map[string]float64 `json:"pv_peak_kw"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Load reads a fixture document from filename.
func Load(filename string) (*Data, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fixture: failed to open %s: %w", filename, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads a fixture document from an io.Reader.
func LoadFromReader(r io.Reader) (*Data, error) {
	data := &Data{
		Scalars:        make(map[string]float64),
		PowerForecasts: make(map[string][]Interval),
		PriceForecasts: make(map[string][]Interval),
		PVPeakKW:       make(map[string]float64),
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("fixture: failed to decode JSON: %w", err)
	}
	return data, nil
}

// Save writes the fixture document to filename as indented JSON.
func (d *Data) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("fixture: failed to create %s: %w", filename, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("fixture: failed to encode JSON: %w", err)
	}
	return nil
}
