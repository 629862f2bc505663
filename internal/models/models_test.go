package models

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

// fixed publishes constant fields so a model under test can be wired
// without its real upstream models.
type fixed struct {
	sim.Leaf
}

func (fixed) Step() error { return nil }

func fixedModel(prefix string, values map[string]any) sim.Factory {
	return func(*randoms.Generator, *config.Configuration) (sim.Model, error) {
		f := &fixed{Leaf: sim.NewLeaf(prefix)}
		names := make([]string, 0, len(values))
		for n := range values {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			switch v := values[n].(type) {
			case sim.Vector:
				sim.Declare(&f.Leaf, n, v)
			case bool:
				sim.Declare(&f.Leaf, n, v)
			case int64:
				sim.Declare(&f.Leaf, n, v)
			case float64:
				sim.Declare(&f.Leaf, n, v)
			}
		}
		return f, nil
	}
}

func mustConfig(t *testing.T, params map[string]any) *config.Configuration {
	t.Helper()
	cfg, err := config.New(params)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func mustList(t *testing.T, seed uint64, params map[string]any, factories ...sim.Factory) *sim.ModelList {
	t.Helper()
	l, err := sim.NewModelList(randoms.New(seed), mustConfig(t, params), factories...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return l
}

func stepN(t *testing.T, l *sim.ModelList, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := l.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func vectorField(t *testing.T, l *sim.ModelList, name string) sim.Vector {
	t.Helper()
	v, err := l.Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return v.(sim.Vector)
}

func realField(t *testing.T, l *sim.ModelList, name string) float64 {
	t.Helper()
	v, err := l.Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return v.(float64)
}

func assertVector(t *testing.T, name string, got, want sim.Vector, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v", name, got, want)
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("%s: got %v, want %v", name, got, want)
			return
		}
	}
}

func assertConfigError(t *testing.T, err error, key string) {
	t.Helper()
	var cerr *config.Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cerr.Key != key {
		t.Errorf("expected error on %q, got %q", key, cerr.Key)
	}
}

func clockParams(dtNs int64) map[string]any {
	return map[string]any{
		"truth.t.ns":  int64(0),
		"truth.dt.ns": dtNs,
	}
}

func merge(maps ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func buildList(seed uint64, params map[string]any, factories ...sim.Factory) (*sim.ModelList, error) {
	cfg, err := config.New(params)
	if err != nil {
		return nil, err
	}
	return sim.NewModelList(randoms.New(seed), cfg, factories...)
}
