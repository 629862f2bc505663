package models

import (
	"testing"

	"github.com/san-kum/psim/internal/sim"
)

func gpsList(t *testing.T, seed uint64, rSigma, vSigma float64) *sim.ModelList {
	t.Helper()
	params := map[string]any{
		"sc.gps.r.sigma": rSigma,
		"sc.gps.v.sigma": vSigma,
	}
	return mustList(t, seed, params,
		fixedModel("sc.orbit", map[string]any{
			"r.eci": sim.Vector{7e6, 0, 0},
			"v.eci": sim.Vector{0, 7500, 0},
		}),
		Gps("sc.gps", "sc.orbit"),
	)
}

func TestGpsNoiseless(t *testing.T) {
	l := gpsList(t, 1, 0, 0)

	valid, _ := l.Get("sc.gps.valid")
	if valid.(bool) {
		t.Error("measurement valid before the first step")
	}
	stepN(t, l, 1)

	assertVector(t, "r", vectorField(t, l, "sc.gps.r.eci"), sim.Vector{7e6, 0, 0}, 0)
	assertVector(t, "v", vectorField(t, l, "sc.gps.v.eci"), sim.Vector{0, 7500, 0}, 0)
	if valid, _ := l.Get("sc.gps.valid"); !valid.(bool) {
		t.Error("measurement should be valid after a step")
	}
}

func TestGpsSeeded(t *testing.T) {
	a := gpsList(t, 7, 5, 0.05)
	b := gpsList(t, 7, 5, 0.05)
	c := gpsList(t, 8, 5, 0.05)
	stepN(t, a, 3)
	stepN(t, b, 3)
	stepN(t, c, 3)

	ra, rb, rc := vectorField(t, a, "sc.gps.r.eci"), vectorField(t, b, "sc.gps.r.eci"), vectorField(t, c, "sc.gps.r.eci")
	assertVector(t, "same seed", ra, rb, 0)
	if ra.Sub(rc).Norm() == 0 {
		t.Error("different seeds produced identical measurements")
	}
	if d := ra.Sub(sim.Vector{7e6, 0, 0}).Norm(); d == 0 || d > 50 {
		t.Errorf("implausible position noise %f m", d)
	}
}

func TestGpsNegativeSigma(t *testing.T) {
	_, err := buildList(1, map[string]any{"g.r.sigma": -1.0, "g.v.sigma": 0.0}, Gps("g", "sc.orbit"))
	assertConfigError(t, err, "g.r.sigma")
}
