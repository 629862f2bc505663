package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Entry is the type-erased view of a field used by lists and harnesses.
type Entry interface {
	Name() string
	Kind() Kind
	Value() any
	set(v any) error
}

// Field is a named simulation value owned by exactly one model. Vector
// values are copied on every Get and Set so no caller can alias the
// owner's storage.
type Field[T Value] struct {
	name string
	v    T
}

func NewField[T Value](name string, init T) *Field[T] {
	f := &Field[T]{name: name}
	f.Set(init)
	return f
}

func (f *Field[T]) Name() string { return f.name }
func (f *Field[T]) Kind() Kind   { return kindOf[T]() }
func (f *Field[T]) Value() any   { return f.Get() }

func (f *Field[T]) Get() T {
	if v, ok := any(f.v).(Vector); ok {
		return any(v.Clone()).(T)
	}
	return f.v
}

func (f *Field[T]) Set(v T) {
	if vec, ok := any(v).(Vector); ok {
		f.v = any(vec.Clone()).(T)
		return
	}
	f.v = v
}

func (f *Field[T]) set(v any) error {
	mismatch := &FieldTypeError{Name: f.name, Kind: f.Kind(), Got: fmt.Sprintf("%T", v)}
	switch dst := any(&f.v).(type) {
	case *float64:
		x, ok := toReal(v)
		if !ok {
			return mismatch
		}
		*dst = x
	case *int64:
		x, ok := toInteger(v)
		if !ok {
			return mismatch
		}
		*dst = x
	case *bool:
		x, ok := v.(bool)
		if !ok {
			return mismatch
		}
		*dst = x
	case *Vector:
		x, ok := toVector(v)
		if !ok || len(x) != len(*dst) {
			return mismatch
		}
		*dst = x.Clone()
	case *quat.Number:
		x, ok := v.(quat.Number)
		if !ok {
			return mismatch
		}
		*dst = x
	}
	return nil
}

func toReal(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		i, ok := toInteger(v)
		return float64(i), ok
	}
}

func toInteger(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint64:
		return int64(x), x <= math.MaxInt64
	default:
		return 0, false
	}
}

func toVector(v any) (Vector, bool) {
	switch x := v.(type) {
	case Vector:
		return x, true
	case []float64:
		return Vector(x), true
	default:
		return nil, false
	}
}

// Ref is a read-only handle on a field owned by another model.
type Ref[T Value] struct {
	f *Field[T]
}

func (r Ref[T]) Name() string { return r.f.name }
func (r Ref[T]) Get() T       { return r.f.Get() }

// Input resolves name in r to a read-only reference of type T.
func Input[T Value](r Registry, name string) (Ref[T], error) {
	e, err := r.Field(name)
	if err != nil {
		return Ref[T]{}, err
	}
	f, ok := e.(*Field[T])
	if !ok {
		return Ref[T]{}, &FieldTypeError{Name: name, Kind: e.Kind(), Got: kindOf[T]().String() + " reference"}
	}
	return Ref[T]{f: f}, nil
}
