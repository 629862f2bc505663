package models

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/psim/internal/sim"
)

// HillFrame returns the rotation from ECI into the Hill (radial,
// along-track, cross-track) frame of the orbit state r, v, so that
// sim.Rotate(q, x) expresses the ECI vector x in Hill components.
func HillFrame(r, v sim.Vector) quat.Number {
	rhat := r.Scale(1 / r.Norm())
	h := r.Cross(v)
	hhat := h.Scale(1 / h.Norm())
	that := hhat.Cross(rhat)

	// rows of the ECI to Hill direction cosine matrix
	m := [3][3]float64{
		{rhat[0], rhat[1], rhat[2]},
		{that[0], that[1], that[2]},
		{hhat[0], hhat[1], hhat[2]},
	}
	return fromMatrix(m)
}

// fromMatrix converts a proper rotation matrix to a unit quaternion using
// Shepperd's method, branching on the largest diagonal term.
func fromMatrix(m [3][3]float64) quat.Number {
	var q quat.Number
	switch tr := m[0][0] + m[1][1] + m[2][2]; {
	case tr > 0:
		s := 2 * math.Sqrt(tr+1)
		q = quat.Number{
			Real: s / 4,
			Imag: (m[2][1] - m[1][2]) / s,
			Jmag: (m[0][2] - m[2][0]) / s,
			Kmag: (m[1][0] - m[0][1]) / s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := 2 * math.Sqrt(1+m[0][0]-m[1][1]-m[2][2])
		q = quat.Number{
			Real: (m[2][1] - m[1][2]) / s,
			Imag: s / 4,
			Jmag: (m[0][1] + m[1][0]) / s,
			Kmag: (m[0][2] + m[2][0]) / s,
		}
	case m[1][1] > m[2][2]:
		s := 2 * math.Sqrt(1+m[1][1]-m[0][0]-m[2][2])
		q = quat.Number{
			Real: (m[0][2] - m[2][0]) / s,
			Imag: (m[0][1] + m[1][0]) / s,
			Jmag: s / 4,
			Kmag: (m[1][2] + m[2][1]) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m[2][2]-m[0][0]-m[1][1])
		q = quat.Number{
			Real: (m[1][0] - m[0][1]) / s,
			Imag: (m[0][2] + m[2][0]) / s,
			Jmag: (m[1][2] + m[2][1]) / s,
			Kmag: s / 4,
		}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}
