package metrics

import (
	"github.com/san-kum/psim/internal/sim"
)

// WithinBound reports the fraction of observed ticks on which a field's
// magnitude stayed at or below a bound, for example an estimator error.
type WithinBound struct {
	name       string
	field      string
	bound      float64
	violations int
	samples    int
}

func NewWithinBound(name, field string, bound float64) *WithinBound {
	return &WithinBound{
		name:  name,
		field: field,
		bound: bound,
	}
}

func (w *WithinBound) Name() string {
	return w.name
}

func (w *WithinBound) Observe(model sim.Model) error {
	v, err := realField(model, w.field)
	if err != nil {
		return err
	}
	w.samples++
	if v > w.bound {
		w.violations++
	}
	return nil
}

func (w *WithinBound) Value() float64 {
	if w.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(w.violations)/float64(w.samples)
}

func (w *WithinBound) Reset() {
	w.violations = 0
	w.samples = 0
}
