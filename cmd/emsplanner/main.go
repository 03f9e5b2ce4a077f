// Package main provides the emsplanner command line interface.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/devskill-org/ems-planner/config"
	"github.com/devskill-org/ems-planner/emsplanner"
	"github.com/devskill-org/ems-planner/plan"
	"github.com/devskill-org/ems-planner/source/fixture"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		os.Exit(1)
	}

	verb := os.Args[1]
	args := os.Args[2:]

	var err error
	switch verb {
	case "solve":
		err = runSolve(args)
	case "record-scenario":
		err = runRecordScenario(args)
	case "refresh-baseline":
		err = runRefreshBaseline(args)
	case "scenario-report":
		err = runScenarioReport(args)
	case "help", "-help", "--help":
		showHelp()
		return
	default:
		fmt.Printf("unknown command: %s\n\n", verb)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// runSolve performs a single-shot solve and writes the resulting plan
// to ${data_dir}/ems_plan.json.
func runSolve(args []string) error {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Configuration file path")
	fixtureFile := fs.String("fixture", "", "Fixture file to resolve inputs from (overrides live resolution)")
	fs.Parse(args)

	logger := log.New(os.Stdout, "[EMSPLANNER] ", log.LstdFlags)

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	p, err := cfg.ToPlant()
	if err != nil {
		return fmt.Errorf("converting plant topology: %w", err)
	}
	if *fixtureFile == "" {
		return fmt.Errorf("a live source resolver is out of scope for this module; pass -fixture")
	}

	now := time.Now()
	loc, err := time.LoadLocation(cfg.EMS.Location)
	if err != nil {
		loc = time.Local
	}

	data, err := fixture.Load(*fixtureFile)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	pl := emsplanner.New(p, fixture.New(data, now), cfg.ToHorizonConfig(loc), loc)
	pl.Logger = logger

	result, err := pl.Plan(context.Background(), now)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	outPath := filepath.Join(cfg.EMS.DataDir, "ems_plan.json")
	if err := writePlan(outPath, result); err != nil {
		return err
	}
	logger.Printf("Plan written to %s (objective=%.3f, status=%s)", outPath, result.Objective, result.Status)
	return nil
}

// runRecordScenario captures a fixture's resolved inputs alongside the
// plan they produce, for later regression comparison.
func runRecordScenario(args []string) error {
	fs := flag.NewFlagSet("record-scenario", flag.ExitOnError)
	fixtureFile := fs.String("fixture", "", "Fixture file to replay")
	name := fs.String("name", "", "Scenario name")
	configFile := fs.String("config", "config.yaml", "Configuration file path")
	fs.Parse(args)

	if *fixtureFile == "" || *name == "" {
		return fmt.Errorf("record-scenario requires -fixture and -name")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	p, err := cfg.ToPlant()
	if err != nil {
		return fmt.Errorf("converting plant topology: %w", err)
	}
	loc, err := time.LoadLocation(cfg.EMS.Location)
	if err != nil {
		loc = time.Local
	}

	data, err := fixture.Load(*fixtureFile)
	if err != nil {
		return fmt.Errorf("loading fixture: %w", err)
	}

	now := time.Now()
	pl := emsplanner.New(p, fixture.New(data, now), cfg.ToHorizonConfig(loc), loc)
	result, err := pl.Plan(context.Background(), now)
	if err != nil {
		return fmt.Errorf("planning: %w", err)
	}

	scenarioDir := filepath.Join(cfg.EMS.DataDir, "scenarios", *name)
	if err := os.MkdirAll(scenarioDir, 0o755); err != nil {
		return fmt.Errorf("creating scenario directory: %w", err)
	}
	if err := data.Save(filepath.Join(scenarioDir, "fixture.json")); err != nil {
		return fmt.Errorf("saving fixture: %w", err)
	}
	if err := writePlan(filepath.Join(scenarioDir, "baseline.json"), result); err != nil {
		return err
	}

	fmt.Printf("Recorded scenario %q (%d slots, objective=%.3f)\n", *name, len(result.Slots), result.Objective)
	return nil
}

// runRefreshBaseline replays every recorded scenario (or one named
// scenario) and overwrites its stored baseline.json with a fresh plan.
func runRefreshBaseline(args []string) error {
	fs := flag.NewFlagSet("refresh-baseline", flag.ExitOnError)
	fixtureFile := fs.String("fixture", "", "Regenerate a single scenario's baseline from this fixture")
	scenario := fs.String("scenario", "", "Scenario name (required with -fixture)")
	configFile := fs.String("config", "config.yaml", "Configuration file path")
	fs.Parse(args)

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	p, err := cfg.ToPlant()
	if err != nil {
		return fmt.Errorf("converting plant topology: %w", err)
	}
	loc, err := time.LoadLocation(cfg.EMS.Location)
	if err != nil {
		loc = time.Local
	}

	scenariosRoot := filepath.Join(cfg.EMS.DataDir, "scenarios")
	names := []string{}
	if *fixtureFile != "" {
		if *scenario == "" {
			return fmt.Errorf("refresh-baseline -fixture requires -scenario")
		}
		names = append(names, *scenario)
	} else {
		entries, err := os.ReadDir(scenariosRoot)
		if err != nil {
			return fmt.Errorf("listing scenarios: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
	}

	now := time.Now()
	for _, name := range names {
		path := *fixtureFile
		if path == "" {
			path = filepath.Join(scenariosRoot, name, "fixture.json")
		}
		data, err := fixture.Load(path)
		if err != nil {
			return fmt.Errorf("scenario %s: loading fixture: %w", name, err)
		}

		pl := emsplanner.New(p, fixture.New(data, now), cfg.ToHorizonConfig(loc), loc)
		result, err := pl.Plan(context.Background(), now)
		if err != nil {
			return fmt.Errorf("scenario %s: planning: %w", name, err)
		}

		baselinePath := filepath.Join(scenariosRoot, name, "baseline.json")
		if err := writePlan(baselinePath, result); err != nil {
			return fmt.Errorf("scenario %s: %w", name, err)
		}
		fmt.Printf("Refreshed baseline for %q\n", name)
	}
	return nil
}

// runScenarioReport prints a short summary of every recorded scenario's
// current baseline.
func runScenarioReport(args []string) error {
	fs := flag.NewFlagSet("scenario-report", flag.ExitOnError)
	fixtureFile := fs.String("fixture", "", "Report only the scenario with this name")
	configFile := fs.String("config", "config.yaml", "Configuration file path")
	fs.Parse(args)

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	scenariosRoot := filepath.Join(cfg.EMS.DataDir, "scenarios")
	entries, err := os.ReadDir(scenariosRoot)
	if err != nil {
		return fmt.Errorf("listing scenarios: %w", err)
	}

	fmt.Println("SCENARIO REPORT")
	fmt.Println("===============")
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if *fixtureFile != "" && e.Name() != *fixtureFile {
			continue
		}
		baselinePath := filepath.Join(scenariosRoot, e.Name(), "baseline.json")
		result, err := readPlan(baselinePath)
		if err != nil {
			fmt.Printf("%-20s  (no baseline: %v)\n", e.Name(), err)
			continue
		}
		fmt.Printf("%-20s  status=%-10s objective=%8.3f slots=%d\n", e.Name(), result.Status, result.Objective, len(result.Slots))
	}
	return nil
}

func writePlan(path string, p *plan.Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return nil
}

func readPlan(path string) (*plan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var p plan.Plan
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func showHelp() {
	fmt.Println("emsplanner - receding-horizon MILP energy planner")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  emsplanner <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  solve             Single-shot solve, writing the plan to ${data_dir}/ems_plan.json")
	fmt.Println("  record-scenario   Capture resolved inputs and the plan they produce")
	fmt.Println("  refresh-baseline  Regenerate one or all recorded scenario baselines")
	fmt.Println("  scenario-report   Summarize recorded scenarios' current baselines")
	fmt.Println("  help              Show this message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  emsplanner solve -config config.yaml -fixture ems_fixture.json")
	fmt.Println("  emsplanner record-scenario -fixture ems_fixture.json -name battery_arbitrage")
	fmt.Println("  emsplanner refresh-baseline")
	fmt.Println("  emsplanner scenario-report")
}
