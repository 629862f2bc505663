package metrics

import (
	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/sim"
)

// DeltaV accumulates the velocity change delivered by an impulse field
// (N s) on a spacecraft of the given mass.
type DeltaV struct {
	name    string
	field   string
	mass    float64
	sum     float64
	firings int
}

func NewDeltaV(field string, mass float64) *DeltaV {
	return &DeltaV{
		name:  "delta_v",
		field: field,
		mass:  mass,
	}
}

func (d *DeltaV) Name() string {
	return d.name
}

func (d *DeltaV) Observe(model sim.Model) error {
	v, err := sim.GetField(model, d.field)
	if err != nil {
		return err
	}
	j, ok := v.(sim.Vector)
	if !ok {
		return errors.NotValidf("impulse field %q of type %T", d.field, v)
	}
	if n := j.Norm(); n > 0 {
		d.sum += n / d.mass
		d.firings++
	}
	return nil
}

func (d *DeltaV) Value() float64 {
	return d.sum
}

// Firings counts ticks with a non-zero impulse.
func (d *DeltaV) Firings() int { return d.firings }

func (d *DeltaV) Reset() {
	d.sum = 0
	d.firings = 0
}
