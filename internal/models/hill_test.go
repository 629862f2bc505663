package models

import (
	"math"
	"testing"

	"github.com/san-kum/psim/internal/sim"
)

func TestHillFrame(t *testing.T) {
	const r, v = 6.8e6, 7650.0

	tests := []struct {
		name string
		r, v sim.Vector
		in   sim.Vector
		want sim.Vector
	}{
		{"equatorial identity", sim.Vector{r, 0, 0}, sim.Vector{0, v, 0}, sim.Vector{1, 2, 3}, sim.Vector{1, 2, 3}},
		{"quarter turn radial", sim.Vector{0, r, 0}, sim.Vector{-v, 0, 0}, sim.Vector{0, 1, 0}, sim.Vector{1, 0, 0}},
		{"quarter turn along track", sim.Vector{0, r, 0}, sim.Vector{-v, 0, 0}, sim.Vector{-1, 0, 0}, sim.Vector{0, 1, 0}},
		{"retrograde cross track", sim.Vector{r, 0, 0}, sim.Vector{0, -v, 0}, sim.Vector{0, 0, 1}, sim.Vector{0, 0, -1}},
		{"polar", sim.Vector{r, 0, 0}, sim.Vector{0, 0, v}, sim.Vector{0, 0, 1}, sim.Vector{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := HillFrame(tt.r, tt.v)
			assertVector(t, "rotated", sim.Rotate(q, tt.in), tt.want, 1e-12)
		})
	}
}

func TestHillFrameAxes(t *testing.T) {
	r := sim.Vector{-4.1e6, 3.2e6, 4.4e6}
	v := sim.Vector{-2100, -6400, 2700}
	q := HillFrame(r, v)

	if n := math.Hypot(math.Hypot(q.Real, q.Imag), math.Hypot(q.Jmag, q.Kmag)); math.Abs(n-1) > 1e-12 {
		t.Fatalf("quaternion not unit: %f", n)
	}
	assertVector(t, "radial", sim.Rotate(q, r), sim.Vector{r.Norm(), 0, 0}, 1e-6)

	h := r.Cross(v)
	assertVector(t, "normal", sim.Rotate(q, h), sim.Vector{0, 0, h.Norm()}, h.Norm()*1e-12)

	hv := sim.Rotate(q, v)
	if hv[1] <= 0 || math.Abs(hv[2]) > 1e-6 {
		t.Errorf("velocity should be along-track positive in plane, got %v", hv)
	}
}
