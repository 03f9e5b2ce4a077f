// Package source defines the abstract provider of realtime scalars
// and forecast interval sequences the planner consumes — the only
// collaborator through which it touches the outside world. Concrete
// implementations (live Home Assistant fetch, fixture replay) live
// outside this package and are injected by whatever assembles a
// Resolver; the core planner only ever sees this interface.
package source

import (
	"context"
	"fmt"

	"github.com/devskill-org/ems-planner/forecast"
)

// EntityRef names a single plant entity (grid, an inverter's PV
// channel, a battery's SoC sensor, an EV charger, ...) within whatever
// addressing scheme the concrete Resolver implementation understands.
type EntityRef string

// Resolver is the typed provider of realtime scalars and forecast
// interval sequences. All unit normalization (to kW / kWh /
// currency-per-kWh) happens inside the implementation; the planner
// never converts units itself.
type Resolver interface {
	// ResolveScalar returns the current reading for ref (e.g. a
	// battery's SoC, a site's realtime load).
	ResolveScalar(ctx context.Context, ref EntityRef) (float64, error)

	// ResolvePowerForecast returns a non-empty, contiguous sequence of
	// power intervals (kW) covering at least minHorizonMinutes.
	ResolvePowerForecast(ctx context.Context, ref EntityRef, minHorizonMinutes int) ([]forecast.PowerInterval, error)

	// ResolvePriceForecast returns a non-empty, contiguous sequence of
	// price intervals (currency/kWh) covering at least minHorizonMinutes.
	ResolvePriceForecast(ctx context.Context, ref EntityRef, minHorizonMinutes int) ([]forecast.PriceInterval, error)

	// ResolveHistoryProfile synthesizes a power forecast from
	// historical data when no live forecast is configured for ref,
	// averaging the last days days of samples at intervalMinutes
	// resolution and projecting horizonHours forward.
	ResolveHistoryProfile(ctx context.Context, ref EntityRef, days, intervalMinutes, horizonHours int) ([]forecast.PowerInterval, error)
}

// DataSourceError wraps a failure raised by a Resolver implementation
// (upstream I/O failure, malformed data, bad units) with the entity
// reference that triggered it.
type DataSourceError struct {
	Ref EntityRef
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("source: %s(%s): %v", e.Op, e.Ref, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}
