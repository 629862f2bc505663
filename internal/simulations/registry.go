package simulations

import (
	"sort"

	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

// Constructor builds a root model from a seeded generator and a
// configuration.
type Constructor func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error)

// Entry describes one named simulation.
type Entry struct {
	Name        string
	Description string
	Presets     []string
	New         Constructor
}

type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]Entry)}

	r.Register(Entry{
		Name:        "orbit_controller_test",
		Description: "leader/follower formation with GPS, estimators, controller and thruster",
		Presets:     []string{"truth/base", "truth/deployment", "sensors/base", "fc/base"},
		New: func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
			m, err := NewOrbitControllerTest(rg, cfg)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})
	r.Register(Entry{
		Name:        "single_orbit_gnc",
		Description: "one spacecraft: truth orbit, GPS and orbit estimator",
		Presets:     []string{"truth/base", "sensors/base", "fc/base"},
		New: func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
			m, err := NewSingleOrbitGnc(rg, cfg)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})
	r.Register(Entry{
		Name:        "orbit_estimator_test",
		Description: "leader and follower estimators without control",
		Presets:     []string{"truth/base", "truth/deployment", "sensors/base", "fc/base"},
		New: func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
			m, err := NewOrbitEstimatorTest(rg, cfg)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})
	r.Register(Entry{
		Name:        "relative_orbit_estimator_test",
		Description: "follower position and velocity relative to the leader in the Hill frame",
		Presets:     []string{"truth/base", "truth/deployment", "sensors/base", "fc/relative_orbit"},
		New: func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
			m, err := NewRelativeOrbitEstimatorTest(rg, cfg)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	})

	return r
}

// Register adds or replaces a named simulation.
func (r *Registry) Register(e Entry) {
	r.entries[e.Name] = e
}

func (r *Registry) Get(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, errors.NotFoundf("simulation %q (available: %v)", name, r.Names())
	}
	return e, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configuration merges the entry's presets, then overrides, left to right.
func (e Entry) Configuration(overrides ...*config.Configuration) (*config.Configuration, error) {
	base, err := config.FromPresets(e.Presets...)
	if err != nil {
		return nil, err
	}
	return config.Merge(append([]*config.Configuration{base}, overrides...)...), nil
}

// Build constructs the named simulation with a generator seeded by seed.
func (r *Registry) Build(name string, seed uint64, cfg *config.Configuration) (sim.Model, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return e.New(randoms.New(seed), cfg)
}
