package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/simulations"
)

const scenarioYAML = `
name: gnc smoke
description: a short single orbit run then a noisier one
steps:
  - simulation: single_orbit_gnc
    steps: 20
    seed: 1
    record: [fc.leader.orbit.r.error]
    save_as: nominal
  - simulation: single_orbit_gnc
    steps: 10
    seed: 2
    set:
      sensors.leader.gps.r.sigma: 50.0
      truth.dt.ns: 50000000
    record: [truth.t.ns]
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunScenario(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if scenario.Name != "gnc smoke" || len(scenario.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", scenario)
	}

	results, err := RunScenario(context.Background(), scenario, simulations.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "nominal" || results[1].Name != "single_orbit_gnc" {
		t.Errorf("unexpected names %q, %q", results[0].Name, results[1].Name)
	}
	if results[0].Result.StepsTaken != 20 {
		t.Errorf("expected 20 steps, got %d", results[0].Result.StepsTaken)
	}

	ts := results[1].Result.Samples["truth.t.ns"]
	if got := ts[len(ts)-1]; got != int64(500_000_000) {
		t.Errorf("override not applied, final time %v", got)
	}
	if sigma, _ := results[1].Config.Real("sensors.leader.gps.r.sigma"); sigma != 50 {
		t.Errorf("expected sigma 50, got %f", sigma)
	}
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	scenario := &Scenario{Steps: []ScenarioStep{
		{Simulation: "single_orbit_gnc", Steps: 5, Seed: 1},
		{Simulation: "single_orbit_gnc", Steps: 5, Seed: 1, Set: map[string]any{"truth.dt.ns": 0}},
		{Simulation: "single_orbit_gnc", Steps: 5, Seed: 1},
	}}

	results, err := RunScenario(context.Background(), scenario, simulations.NewRegistry())
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(results) != 1 {
		t.Errorf("expected 1 completed run, got %d", len(results))
	}
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected an error for a scenario without steps")
	}
}

func TestRunSweep(t *testing.T) {
	reg := simulations.NewRegistry()
	entry, _ := reg.Get("single_orbit_gnc")
	base, err := entry.Configuration()
	if err != nil {
		t.Fatal(err)
	}
	// Velocity noise feeds the position estimate too.
	base, err = base.With("sensors.leader.gps.v.sigma", 0.0)
	if err != nil {
		t.Fatal(err)
	}

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Simulation: "single_orbit_gnc",
		Base:       base,
		Param:      "sensors.leader.gps.r.sigma",
		ParamMin:   0,
		ParamMax:   10,
		NumSteps:   3,
		Ticks:      30,
		Seed:       4,
		Field:      "fc.leader.orbit.r.error",
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 points, got %d", len(results))
	}
	if results[1].ParamValue != 5 {
		t.Errorf("expected midpoint 5, got %f", results[1].ParamValue)
	}
	if results[0].Max > 1e-6 {
		t.Errorf("noiseless sensor left estimator error %g", results[0].Max)
	}
	if results[2].Max <= results[0].Max {
		t.Errorf("noisier sensor should raise the error: %v", results)
	}
}

func TestRunSweepValidates(t *testing.T) {
	base, _ := config.New(nil)
	if _, err := RunSweep(context.Background(), &ParameterSweep{Simulation: "single_orbit_gnc", Base: base, NumSteps: 1}, simulations.NewRegistry()); err == nil {
		t.Error("expected an error for a one point sweep")
	}
}
