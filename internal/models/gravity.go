package models

import (
	"math"

	"github.com/san-kum/psim/internal/sim"
)

const (
	EarthMu     = 3.986004418e14 // m^3/s^2
	EarthRadius = 6378137.0      // m
	EarthJ2     = 1.08262668e-3
)

// Gravity is the two-body (optionally J2 perturbed) equation of motion on
// the state [r, v] in ECI.
type Gravity struct {
	J2 bool
}

func (g Gravity) Acceleration(r sim.Vector) sim.Vector {
	rn := r.Norm()
	a := r.Scale(-EarthMu / (rn * rn * rn))
	if !g.J2 {
		return a
	}

	z2 := (r[2] * r[2]) / (rn * rn)
	k := -1.5 * EarthJ2 * EarthMu * EarthRadius * EarthRadius / math.Pow(rn, 5)
	a[0] += k * r[0] * (1 - 5*z2)
	a[1] += k * r[1] * (1 - 5*z2)
	a[2] += k * r[2] * (3 - 5*z2)
	return a
}

func (g Gravity) Derive(x sim.Vector, t float64) sim.Vector {
	a := g.Acceleration(x[:3])
	return sim.Vector{x[3], x[4], x[5], a[0], a[1], a[2]}
}

// SpecificEnergy ignores the J2 potential.
func SpecificEnergy(r, v sim.Vector) float64 {
	return 0.5*v.Dot(v) - EarthMu/r.Norm()
}
