package metrics

import (
	"math"

	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/sim"
)

// Mean averages a field over every observed tick.
type Mean struct {
	name    string
	field   string
	sum     float64
	samples int
}

func NewMean(name, field string) *Mean {
	return &Mean{
		name:  name,
		field: field,
	}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(model sim.Model) error {
	v, err := realField(model, m.field)
	if err != nil {
		return err
	}
	m.sum += v
	m.samples++
	return nil
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// EnergyDrift tracks the largest relative departure of an energy field
// from its first observed value.
type EnergyDrift struct {
	name          string
	field         string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(field string) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		field: field,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(model sim.Model) error {
	energy, err := realField(model, e.field)
	if err != nil {
		return err
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
	return nil
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

func realField(model sim.Model, field string) (float64, error) {
	v, err := sim.GetField(model, field)
	if err != nil {
		return 0, err
	}
	x, ok := sim.Real(v)
	if !ok {
		return 0, errors.NotValidf("field %q of type %T as a real", field, v)
	}
	return x, nil
}
