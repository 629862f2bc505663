// Package config holds the immutable parameter store handed to every model
// at construction time.
//
// Parameters are addressed by dotted keys (for example "truth.dt.ns") and
// carry one of a small set of value kinds. Lookups are typed and validated
// lazily: a missing key or a value of the wrong kind fails with [*Error]
// at the point a model asks for it.
package config

import (
	"fmt"
	"sort"

	"github.com/juju/errors"
)

type Kind int

const (
	KindReal Kind = iota
	KindInteger
	KindBool
	KindString
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindInteger:
		return "integer"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error reports a missing or mistyped configuration parameter.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %q: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error { return errors.NotValid }

type param struct {
	kind  Kind
	value any
}

// Configuration is safe to share between goroutines; nothing mutates it
// after New returns.
type Configuration struct {
	params map[string]param
}

// New normalizes params into a Configuration. Accepted values are Go
// floats, integers, bools, strings and numeric slices.
func New(params map[string]any) (*Configuration, error) {
	c := &Configuration{params: make(map[string]param, len(params))}
	for key, v := range params {
		p, err := normalize(key, v)
		if err != nil {
			return nil, err
		}
		c.params[key] = p
	}
	return c, nil
}

func normalize(key string, v any) (param, error) {
	switch x := v.(type) {
	case float64:
		return param{KindReal, x}, nil
	case float32:
		return param{KindReal, float64(x)}, nil
	case int:
		return param{KindInteger, int64(x)}, nil
	case int32:
		return param{KindInteger, int64(x)}, nil
	case int64:
		return param{KindInteger, x}, nil
	case uint32:
		return param{KindInteger, int64(x)}, nil
	case bool:
		return param{KindBool, x}, nil
	case string:
		return param{KindString, x}, nil
	case []float64:
		c := make([]float64, len(x))
		copy(c, x)
		return param{KindVector, c}, nil
	case []any:
		c := make([]float64, len(x))
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return param{}, &Error{Key: key, Reason: fmt.Sprintf("vector element %d has type %T", i, e)}
			}
			c[i] = f
		}
		return param{KindVector, c}, nil
	default:
		return param{}, &Error{Key: key, Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Merge layers configurations left to right; later keys win.
func Merge(cfgs ...*Configuration) *Configuration {
	out := &Configuration{params: make(map[string]param)}
	for _, c := range cfgs {
		if c == nil {
			continue
		}
		for k, p := range c.params {
			out.params[k] = p
		}
	}
	return out
}

// With returns a copy of c with key set to value.
func (c *Configuration) With(key string, value any) (*Configuration, error) {
	p, err := normalize(key, value)
	if err != nil {
		return nil, err
	}
	out := Merge(c)
	out.params[key] = p
	return out, nil
}

// Without returns a copy of c lacking key.
func (c *Configuration) Without(key string) *Configuration {
	out := Merge(c)
	delete(out.params, key)
	return out
}

func (c *Configuration) Has(key string) bool {
	_, ok := c.params[key]
	return ok
}

func (c *Configuration) Len() int { return len(c.params) }

// Keys returns every key in lexical order.
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.params))
	for k := range c.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Kind reports the kind stored under key.
func (c *Configuration) Kind(key string) (Kind, error) {
	p, ok := c.params[key]
	if !ok {
		return 0, &Error{Key: key, Reason: "missing"}
	}
	return p.kind, nil
}

// Value returns the raw normalized value under key.
func (c *Configuration) Value(key string) (any, error) {
	p, ok := c.params[key]
	if !ok {
		return nil, &Error{Key: key, Reason: "missing"}
	}
	if v, ok := p.value.([]float64); ok {
		return clone(v), nil
	}
	return p.value, nil
}

func (c *Configuration) lookup(key string, want Kind) (param, error) {
	p, ok := c.params[key]
	if !ok {
		return param{}, &Error{Key: key, Reason: "missing"}
	}
	if p.kind != want {
		return param{}, &Error{Key: key, Reason: fmt.Sprintf("expected %s, got %s", want, p.kind)}
	}
	return p, nil
}

// Real returns a real parameter. Integer values are widened.
func (c *Configuration) Real(key string) (float64, error) {
	if p, ok := c.params[key]; ok && p.kind == KindInteger {
		return float64(p.value.(int64)), nil
	}
	p, err := c.lookup(key, KindReal)
	if err != nil {
		return 0, err
	}
	return p.value.(float64), nil
}

func (c *Configuration) Integer(key string) (int64, error) {
	p, err := c.lookup(key, KindInteger)
	if err != nil {
		return 0, err
	}
	return p.value.(int64), nil
}

func (c *Configuration) Bool(key string) (bool, error) {
	p, err := c.lookup(key, KindBool)
	if err != nil {
		return false, err
	}
	return p.value.(bool), nil
}

func (c *Configuration) String(key string) (string, error) {
	p, err := c.lookup(key, KindString)
	if err != nil {
		return "", err
	}
	return p.value.(string), nil
}

// Vector returns a vector parameter of exactly dim components. A dim of
// zero accepts any length.
func (c *Configuration) Vector(key string, dim int) ([]float64, error) {
	p, err := c.lookup(key, KindVector)
	if err != nil {
		return nil, err
	}
	v := p.value.([]float64)
	if dim > 0 && len(v) != dim {
		return nil, &Error{Key: key, Reason: fmt.Sprintf("expected %d components, got %d", dim, len(v))}
	}
	return clone(v), nil
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
