package model

// Tie-breaker and penalty weights, gathered here so they can be tuned
// without touching the constraint/objective structure. Each tie-breaker
// (epsExport, epsTie, wBatteryTiming, wRamp, wAnchor) is small enough
// relative to a real energy-cost term (priced in currency per kWh,
// typically O(0.1)) that it never reverses a strictly economic
// decision; wViolation and bigM are deliberately large.
const (
	// epsExport nudges the solver to prefer exporting over curtailing
	// PV when the export price is exactly zero.
	epsExport = 1e-4

	// epsTie rewards earlier grid flow very slightly, for deterministic
	// ordering among otherwise-equal solutions.
	epsTie = 1e-5

	// wBatteryTiming nudges battery cycling earlier in the horizon.
	wBatteryTiming = 1e-6

	// wRamp penalizes EV charge-power swings between slots.
	wRamp = 1e-3

	// wAnchor penalizes slot-0 EV power deviating from the realtime
	// reading, so the plan doesn't whipsaw an in-progress charge.
	wAnchor = 1e-3

	// wViolation prices forbidden-import slack heavily enough that the
	// solver only uses it when truly unavoidable.
	wViolation = 1e3

	// wTerminalShortfall prices the adaptive-terminal slack.
	wTerminalShortfall = 1.0

	// bigM linearizes the reserve/export gate. It must dominate any
	// realistic energy magnitude in this domain (kWh) without
	// overflowing the LP kernel's tolerance.
	bigM = 1e5

	// anchorDeadbandKW: below this realtime EV power, the slot-0
	// anchor term is dropped rather than pinning P_ev[e,0] near zero.
	anchorDeadbandKW = 0.1
)
