package integrators

import "github.com/san-kum/psim/internal/sim"

// Verlet and Leapfrog expect x = [positions..., velocities...] with the
// derivative's second half holding accelerations that depend on position
// only.
type Verlet struct {
	scratch sim.Vector
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(sys System, x sim.Vector, t, dt float64) sim.Vector {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(sim.Vector, n)
	}

	result := make(sim.Vector, n)
	dx := sys.Derive(x, t)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := sys.Derive(v.scratch, t+dt)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfDt
	}

	return result
}

type Leapfrog struct {
	scratch sim.Vector
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys System, x sim.Vector, t, dt float64) sim.Vector {
	n := len(x)
	half := n / 2

	if len(l.scratch) != n {
		l.scratch = make(sim.Vector, n)
	}

	result := make(sim.Vector, n)
	dx := sys.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + dx[half+i]*halfDt
	}

	for i := 0; i < half; i++ {
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dxNew := sys.Derive(l.scratch, t+dt)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dxNew[half+i]*halfDt
	}

	return result
}
