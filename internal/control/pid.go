package control

import (
	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/sim"
)

// PID is a per-axis vector controller. Compute returns the correction that
// drives the error toward zero.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	integral sim.Vector
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{
		Kp: kp,
		Ki: ki,
		Kd: kd,
	}
}

// Compute takes the current error, its rate, and the time in seconds since
// the previous call.
func (p *PID) Compute(err, rate sim.Vector, dt float64) sim.Vector {
	if len(p.integral) != len(err) {
		p.integral = make(sim.Vector, len(err))
	}
	if dt > 0 {
		p.integral = p.integral.Add(err.Scale(dt))
	}

	u := make(sim.Vector, len(err))
	for i := range u {
		u[i] = -(p.Kp*err[i] + p.Ki*p.integral[i] + p.Kd*rate[i])
	}
	return u
}

// Reset clears integral state
func (p *PID) Reset() {
	p.integral = nil
}

// GetParams returns the gains keyed by their configuration names.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp": p.Kp,
		"ki": p.Ki,
		"kd": p.Kd,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	default:
		return errors.NotFoundf("PID gain %q", name)
	}
	return nil
}
