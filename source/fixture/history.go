package fixture

import (
	"math"
	"time"

	"github.com/devskill-org/ems-planner/forecast"
	"github.com/sixdouglas/suncalc"
)

// synthesizeSolarProfile builds a deterministic PV power forecast from
// a sun-altitude model, used by Resolver.ResolveHistoryProfile. peakKW is the
// panel's rated output; actual output at each slot scales with
// sin(altitude), matching how solar elevation governs irradiance.
func synthesizeSolarProfile(now time.Time, lat, lon, peakKW float64, intervalMinutes, horizonHours int) []forecast.PowerInterval {
	step := time.Duration(intervalMinutes) * time.Minute
	if step <= 0 {
		step = 30 * time.Minute
	}
	n := int(time.Duration(horizonHours) * time.Hour / step)
	if n <= 0 {
		n = 1
	}

	out := make([]forecast.PowerInterval, n)
	cursor := now
	for i := 0; i < n; i++ {
		end := cursor.Add(step)
		out[i] = forecast.PowerInterval{
			Start: cursor,
			End:   end,
			Value: solarOutputAt(cursor.Add(step/2), lat, lon, peakKW),
		}
		cursor = end
	}
	return out
}

// solarOutputAt returns the synthesized PV output (kW) at t, zero
// outside daylight hours.
func solarOutputAt(t time.Time, lat, lon, peakKW float64) float64 {
	times := suncalc.GetTimes(t, lat, lon)
	sunrise := times["sunrise"].Value
	sunset := times["sunset"].Value
	if t.Before(sunrise) || t.After(sunset) {
		return 0
	}

	pos := suncalc.GetPosition(t, lat, lon)
	factor := math.Sin(pos.Altitude)
	if factor < 0 {
		return 0
	}
	return peakKW * factor
}
