package automation

import (
	"context"
	"math"
	"os"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
	"github.com/san-kum/psim/internal/simulations"
)

var logger = loggo.GetLogger("psim.automation")

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario
type ScenarioStep struct {
	Simulation string         `yaml:"simulation"`
	Presets    []string       `yaml:"presets"`
	Set        map[string]any `yaml:"set"`
	Steps      int            `yaml:"steps"`
	Seed       uint64         `yaml:"seed"`
	Record     []string       `yaml:"record"`
	SaveAs     string         `yaml:"save_as"`
}

// StepResult pairs a scenario step with its run.
type StepResult struct {
	Name   string
	Seed   uint64
	Config *config.Configuration
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Annotatef(err, "scenario %s", path)
	}
	if len(scenario.Steps) == 0 {
		return nil, errors.NotValidf("scenario %s without steps", path)
	}

	return &scenario, nil
}

// Configuration merges the step's presets (the simulation's own when none
// are listed) with its overrides.
func (s ScenarioStep) Configuration(entry simulations.Entry) (*config.Configuration, error) {
	presets := s.Presets
	if len(presets) == 0 {
		presets = entry.Presets
	}
	base, err := config.FromPresets(presets...)
	if err != nil {
		return nil, err
	}
	overrides, err := config.New(s.Set)
	if err != nil {
		return nil, err
	}
	return config.Merge(base, overrides), nil
}

// RunScenario executes all steps in a scenario in order and stops at the
// first failure, returning the runs completed so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *simulations.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Infof("running step %d/%d: %s", i+1, len(scenario.Steps), step.Simulation)

		entry, err := registry.Get(step.Simulation)
		if err != nil {
			return results, errors.Annotatef(err, "step %d", i+1)
		}
		cfg, err := step.Configuration(entry)
		if err != nil {
			return results, errors.Annotatef(err, "step %d", i+1)
		}

		m, err := entry.New(randoms.New(step.Seed), cfg)
		if err != nil {
			return results, errors.Annotatef(err, "step %d setup", i+1)
		}

		result, err := sim.New(m).Run(ctx, sim.Config{Steps: step.Steps, Record: step.Record})
		if err != nil {
			return results, errors.Annotatef(err, "step %d run", i+1)
		}

		name := step.SaveAs
		if name == "" {
			name = step.Simulation
		}
		results = append(results, StepResult{Name: name, Seed: step.Seed, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep runs a simulation across evenly spaced values of one
// configuration key and summarises one field per run.
type ParameterSweep struct {
	Simulation string
	Base       *config.Configuration
	Param      string
	ParamMin   float64
	ParamMax   float64
	NumSteps   int
	Ticks      int
	Seed       uint64
	Field      string
}

// SweepResult holds one point of a parameter sweep. Min and Max span the
// field over the whole run, initial sample included.
type SweepResult struct {
	ParamValue float64
	Final      float64
	Min        float64
	Max        float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *simulations.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, errors.NotValidf("sweep of %d points", sweep.NumSteps)
	}
	entry, err := registry.Get(sweep.Simulation)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg, err := sweep.Base.With(sweep.Param, paramVal)
		if err != nil {
			return nil, err
		}

		m, err := entry.New(randoms.New(sweep.Seed), cfg)
		if err != nil {
			return nil, errors.Annotatef(err, "%s=%g", sweep.Param, paramVal)
		}
		result, err := sim.New(m).Run(ctx, sim.Config{Steps: sweep.Ticks, Record: []string{sweep.Field}})
		if err != nil {
			return nil, errors.Annotatef(err, "%s=%g", sweep.Param, paramVal)
		}

		series, err := result.Series(sweep.Field)
		if err != nil {
			return nil, err
		}
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, v := range series {
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Final:      series[len(series)-1],
			Min:        minV,
			Max:        maxV,
		})
		logger.Debugf("sweep %d/%d: %s=%.4g", i+1, sweep.NumSteps, sweep.Param, paramVal)
	}

	return results, nil
}
