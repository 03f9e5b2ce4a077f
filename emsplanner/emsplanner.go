// Package emsplanner wires the horizon builder, forecast aligner,
// MILP model, solver, and plan extractor into the single synchronous
// entry point an external worker calls once per planning cycle.
package emsplanner

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/devskill-org/ems-planner/horizon"
	"github.com/devskill-org/ems-planner/milp"
	"github.com/devskill-org/ems-planner/model"
	"github.com/devskill-org/ems-planner/plan"
	"github.com/devskill-org/ems-planner/plant"
	"github.com/devskill-org/ems-planner/source"
)

// Planner wraps a plant topology and its resolver, producing a fresh
// Plan for each invocation. It holds no mutable state across calls.
type Planner struct {
	Plant    *plant.Plant
	Resolver source.Resolver
	Location *time.Location
	Horizon  horizon.Config

	Logger *log.Logger
}

// New returns a Planner with a default stdout logger, matching the
// [EMSPLANNER] prefix convention used by this module's CLI.
func New(p *plant.Plant, resolver source.Resolver, horizonCfg horizon.Config, loc *time.Location) *Planner {
	return &Planner{
		Plant:    p,
		Resolver: resolver,
		Location: loc,
		Horizon:  horizonCfg,
		Logger:   log.New(os.Stdout, "[EMSPLANNER] ", log.LstdFlags),
	}
}

// Plan runs one complete planning cycle: resolve inputs, build the
// horizon, build and solve the MILP, and extract the result. ctx is
// checked before the solver runs; cancellation after that point is
// not honored, since the solver call is atomic from this function's
// point of view.
func (pl *Planner) Plan(ctx context.Context, now time.Time) (*plan.Plan, error) {
	if err := pl.Plant.Validate(); err != nil {
		return nil, err
	}

	pl.Logger.Printf("Step 1: resolving forecasts and realtime scalars at %s", now.Format(time.RFC3339))
	resolved, err := pl.resolveInputs(ctx, now)
	if err != nil {
		return nil, err
	}

	pl.Logger.Printf("Step 2: building horizon (min=%dmin)", pl.Horizon.MinHorizonMinutes)
	h, err := horizon.Build(now, pl.Horizon, resolved.maxCoverageMinutes)
	if err != nil {
		return nil, err
	}
	pl.Logger.Printf("Step 2: horizon has %d slots", h.N())

	pl.Logger.Printf("Step 3: aligning forecasts onto %d slots", h.N())
	in, err := pl.alignInputs(h, resolved)
	if err != nil {
		return nil, err
	}

	pl.Logger.Printf("Step 4: building MILP")
	problem, idx, err := model.Build(h, pl.Plant, in)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		pl.Logger.Printf("Step 5: aborted before solving: %v", err)
		return nil, err
	}

	pl.Logger.Printf("Step 5: solving (%d variables, %d rows)", len(problem.Vars), len(problem.Rows))
	sol, err := milp.Solve(ctx, problem)
	if err != nil {
		pl.Logger.Printf("Step 5: solve failed: %v", err)
		return nil, err
	}

	pl.Logger.Printf("Step 6: extracting plan, objective=%.3f", sol.Objective)
	return plan.Extract(now, sol.Status.String(), h, pl.Plant, in, idx, sol), nil
}

func (pl *Planner) locOrDefault() *time.Location {
	if pl.Location != nil {
		return pl.Location
	}
	return time.Local
}
