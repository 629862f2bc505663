package control

import (
	"testing"

	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/sim"
)

func TestPIDOpposesError(t *testing.T) {
	ctrl := NewPID(1.0, 0.0, 0.5)
	u := ctrl.Compute(sim.Vector{1, -2, 0}, sim.Vector{0, 0, 0}, 1)

	if len(u) != 3 {
		t.Fatalf("expected 3 components, got %d", len(u))
	}
	if u[0] >= 0 || u[1] <= 0 || u[2] != 0 {
		t.Errorf("PID should oppose the error, got %v", u)
	}
}

func TestPIDDamping(t *testing.T) {
	ctrl := NewPID(0, 0, 2)
	u := ctrl.Compute(sim.Vector{0}, sim.Vector{1}, 1)
	if u[0] != -2 {
		t.Errorf("expected damping term -2, got %v", u[0])
	}
}

func TestPIDIntegral(t *testing.T) {
	ctrl := NewPID(0, 1, 0)
	ctrl.Compute(sim.Vector{1}, sim.Vector{0}, 2)
	u := ctrl.Compute(sim.Vector{1}, sim.Vector{0}, 2)
	if u[0] != -4 {
		t.Errorf("expected accumulated integral -4, got %v", u[0])
	}

	ctrl.Reset()
	u = ctrl.Compute(sim.Vector{1}, sim.Vector{0}, 0)
	if u[0] != 0 {
		t.Errorf("expected zero after reset, got %v", u[0])
	}
}

func TestPIDParams(t *testing.T) {
	ctrl := NewPID(1, 2, 3)
	if err := ctrl.SetParam("kd", 4); err != nil {
		t.Fatal(err)
	}
	params := ctrl.GetParams()
	if params["kp"] != 1 || params["ki"] != 2 || params["kd"] != 4 {
		t.Errorf("got %v, want kp=1 ki=2 kd=4", params)
	}
	if err := ctrl.SetParam("Kx", 1); !errors.Is(err, errors.NotFound) {
		t.Errorf("expected NotFound for unknown gain, got %v", err)
	}
}
