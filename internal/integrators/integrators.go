// Package integrators provides fixed-step ODE integrators for models that
// propagate continuous state across a tick.
package integrators

import (
	"sort"

	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/sim"
)

// System is a first order ODE dx/dt = f(x, t).
type System interface {
	Derive(x sim.Vector, t float64) sim.Vector
}

type Integrator interface {
	Step(sys System, x sim.Vector, t, dt float64) sim.Vector
}

var registry = map[string]func() Integrator{
	"euler":    func() Integrator { return NewEuler() },
	"rk4":      func() Integrator { return NewRK4() },
	"verlet":   func() Integrator { return NewVerlet() },
	"leapfrog": func() Integrator { return NewLeapfrog() },
}

// New returns the integrator registered under name.
func New(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, errors.NotFoundf("integrator %q (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
