package sim

import (
	"io"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
)

var logger = loggo.GetLogger("psim.sim")

// ModelList owns an ordered sequence of models and steps them in that
// order. The order is fixed at construction: a field written by model i
// during a tick is visible to every model j > i in the same tick.
//
// A ModelList is not safe for concurrent use.
type ModelList struct {
	models []Model
	fields []Entry
	index  map[string]Entry
	ticks  uint64
}

// NewModelList constructs every factory in order with the same rg and
// cfg, indexes their fields and resolves cross-model references. When any
// step fails, models built so far are released and no list is returned.
func NewModelList(rg *randoms.Generator, cfg *config.Configuration, factories ...Factory) (*ModelList, error) {
	l, err := build(rg, cfg, factories)
	if err != nil {
		return nil, err
	}
	if err := l.Resolve(l); err != nil {
		l.Close()
		return nil, err
	}
	logger.Debugf("composed %d models with %d fields", len(l.models), len(l.fields))
	return l, nil
}

// Group returns a factory that builds a nested list. The nested list is
// resolved by the enclosing root list, so its models may reference fields
// anywhere in the composition.
func Group(factories ...Factory) Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (Model, error) {
		l, err := build(rg, cfg, factories)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

func build(rg *randoms.Generator, cfg *config.Configuration, factories []Factory) (*ModelList, error) {
	if rg == nil {
		return nil, errors.NotValidf("nil randoms generator")
	}
	if cfg == nil {
		return nil, errors.NotValidf("nil configuration")
	}

	l := &ModelList{
		models: make([]Model, 0, len(factories)),
		index:  make(map[string]Entry),
	}
	for i, factory := range factories {
		m, err := factory(rg, cfg)
		if err != nil {
			l.Close()
			return nil, errors.Annotatef(err, "constructing model %d", i)
		}
		l.models = append(l.models, m)

		for _, f := range m.Fields() {
			if _, dup := l.index[f.Name()]; dup {
				l.Close()
				return nil, &DuplicateFieldError{Name: f.Name(), Index: i}
			}
			l.index[f.Name()] = f
			l.fields = append(l.fields, f)
		}
	}
	return l, nil
}

func (l *ModelList) Fields() []Entry {
	out := make([]Entry, len(l.fields))
	copy(out, l.fields)
	return out
}

// Names lists field names in registration order.
func (l *ModelList) Names() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.Name()
	}
	return names
}

func (l *ModelList) Len() int { return len(l.models) }

// Ticks reports how many complete ticks the list has taken.
func (l *ModelList) Ticks() uint64 { return l.ticks }

func (l *ModelList) Field(name string) (Entry, error) {
	e, ok := l.index[name]
	if !ok {
		return nil, &UnknownFieldError{Name: name}
	}
	return e, nil
}

func (l *ModelList) Get(name string) (any, error) { return GetField(l, name) }

func (l *ModelList) Set(name string, v any) error { return SetField(l, name, v) }

func (l *ModelList) Resolve(r Registry) error {
	for i, m := range l.models {
		if err := m.Resolve(r); err != nil {
			return errors.Annotatef(err, "resolving model %d", i)
		}
	}
	return nil
}

// Step advances every model once, in order. The first failure ends the
// tick and is returned as a *StepError; the tick is not counted.
func (l *ModelList) Step() error {
	for i, m := range l.models {
		if err := m.Step(); err != nil {
			logger.Warningf("tick %d: model %d failed: %v", l.ticks, i, err)
			return &StepError{Tick: l.ticks, Index: i, Err: err}
		}
	}
	l.ticks++
	return nil
}

// Close releases models that hold resources, in reverse order.
func (l *ModelList) Close() error {
	var first error
	for i := len(l.models) - 1; i >= 0; i-- {
		c, ok := l.models[i].(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.models = nil
	return first
}
