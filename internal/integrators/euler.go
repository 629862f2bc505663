package integrators

import "github.com/san-kum/psim/internal/sim"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, x sim.Vector, t, dt float64) sim.Vector {
	dx := sys.Derive(x, t)
	result := make(sim.Vector, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
