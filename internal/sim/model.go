package sim

import (
	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
)

// Registry resolves fully qualified field names.
type Registry interface {
	Field(name string) (Entry, error)
}

// Model is the unit of simulable state. Leaf models and [ModelList]
// satisfy the same contract, so lists nest.
type Model interface {
	Registry

	// Fields returns every field the model owns, or aggregates for a list,
	// in declaration order.
	Fields() []Entry

	// Resolve binds read-only references to fields of other models. It is
	// called once, after every model of the root list has been built.
	Resolve(r Registry) error

	// Step advances the model by one tick using current field values.
	Step() error
}

// Factory constructs a model from the shared random source and the
// configuration. A factory must not retain cfg.
type Factory func(rg *randoms.Generator, cfg *config.Configuration) (Model, error)

// GetField reads a field by fully qualified name.
func GetField(m Model, name string) (any, error) {
	e, err := m.Field(name)
	if err != nil {
		return nil, err
	}
	return e.Value(), nil
}

// SetField writes a field by fully qualified name. The value must match
// the field kind.
func SetField(m Model, name string, v any) error {
	e, err := m.Field(name)
	if err != nil {
		return err
	}
	return e.set(v)
}

// Leaf implements the field bookkeeping shared by leaf models. Embed it
// and declare fields with [Declare].
type Leaf struct {
	prefix string
	fields []Entry
	index  map[string]Entry
}

func NewLeaf(prefix string) Leaf {
	return Leaf{prefix: prefix, index: make(map[string]Entry)}
}

func (l *Leaf) Prefix() string { return l.prefix }

// Key qualifies a local name with the model prefix. It names both fields
// and the configuration keys the model owns.
func (l *Leaf) Key(local string) string {
	if l.prefix == "" {
		return local
	}
	return l.prefix + "." + local
}

func (l *Leaf) Fields() []Entry {
	out := make([]Entry, len(l.fields))
	copy(out, l.fields)
	return out
}

func (l *Leaf) Field(name string) (Entry, error) {
	e, ok := l.index[name]
	if !ok {
		return nil, &UnknownFieldError{Name: name}
	}
	return e, nil
}

func (l *Leaf) Resolve(Registry) error { return nil }

// Declare adds a field named l.Key(local) to the leaf. A name declared
// twice stays in Fields, so the enclosing list rejects the model with a
// [DuplicateFieldError]; Field keeps returning the first declaration.
func Declare[T Value](l *Leaf, local string, init T) *Field[T] {
	f := NewField(l.Key(local), init)
	if l.index == nil {
		l.index = make(map[string]Entry)
	}
	l.fields = append(l.fields, f)
	if _, dup := l.index[f.name]; !dup {
		l.index[f.name] = f
	}
	return f
}
