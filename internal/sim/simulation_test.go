package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	jujuerrors "github.com/juju/errors"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
)

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(m Model) error {
	v, err := GetField(m, "a.out")
	if err != nil {
		return err
	}
	t.count++
	t.sum += float64(v.(int64))
	return nil
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type testObserver struct {
	ticks []uint64
}

func (o *testObserver) OnStep(tick uint64, m Model) { o.ticks = append(o.ticks, tick) }

type testRecorder struct {
	steps, errs int
}

func (r *testRecorder) ObserveStep(d time.Duration, err error) {
	r.steps++
	if err != nil {
		r.errs++
	}
}

func newTestList(t *testing.T) *ModelList {
	t.Helper()
	cfg, _ := config.New(map[string]any{})
	l, err := NewModelList(randoms.New(1), cfg, newCounter("a"), newFollower("f", "a.out"))
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSimulationRun(t *testing.T) {
	s := New(newTestList(t))

	metric := &testMetric{}
	obs := &testObserver{}
	rec := &testRecorder{}
	s.AddMetric(metric)
	s.AddObserver(obs)
	s.SetRecorder(rec)

	result, err := s.Run(context.Background(), Config{Steps: 10, Record: []string{"a.out", "f.seen"}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Ticks) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Ticks))
	}
	series, err := result.Series("f.seen")
	if err != nil {
		t.Fatal(err)
	}
	if series[0] != -1 || series[10] != 10 {
		t.Errorf("unexpected f.seen series: %v", series)
	}
	if got := result.Metrics["test"]; got != 5.5 {
		t.Errorf("metric = %v, want 5.5", got)
	}
	if len(obs.ticks) != 10 || obs.ticks[9] != 10 {
		t.Errorf("observer ticks = %v", obs.ticks)
	}
	if rec.steps != 10 || rec.errs != 0 {
		t.Errorf("recorder saw %d steps, %d errors", rec.steps, rec.errs)
	}
	if _, err := result.Series("missing"); err == nil {
		t.Error("expected error for unrecorded field")
	}
}

func TestSimulationInvalidConfig(t *testing.T) {
	s := New(newTestList(t))

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero steps", Config{Steps: 0}, jujuerrors.NotValid},
		{"negative steps", Config{Steps: -1}, jujuerrors.NotValid},
		{"unknown record field", Config{Steps: 1, Record: []string{"nope"}}, jujuerrors.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("expected %v class, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulationCanceled(t *testing.T) {
	s := New(newTestList(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Steps: 5})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps after cancel, got %d", result.StepsTaken)
	}
}

func TestSimulationStepFailureSurfaces(t *testing.T) {
	boom := errors.New("diverged")
	cfg, _ := config.New(map[string]any{})
	l, err := NewModelList(randoms.New(1), cfg, func(rg *randoms.Generator, cfg *config.Configuration) (Model, error) {
		return &failing{Leaf: NewLeaf("x"), err: boom}, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	s := New(l)
	rec := &testRecorder{}
	s.SetRecorder(rec)

	result, err := s.Run(context.Background(), Config{Steps: 3})
	if !errors.Is(err, boom) {
		t.Fatalf("expected step failure, got %v", err)
	}
	if result.StepsTaken != 0 || rec.errs != 1 {
		t.Errorf("steps=%d errs=%d", result.StepsTaken, rec.errs)
	}
}

func TestSimulationGetSet(t *testing.T) {
	s := New(newTestList(t))
	if err := s.Set("a.out", int64(4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("f.seen"); v != int64(5) {
		t.Errorf("f.seen = %v, want 5", v)
	}
	if s.Model() == nil {
		t.Error("Model() returned nil")
	}
}

func TestEnsemble(t *testing.T) {
	cfg, _ := config.New(map[string]any{"n.sigma": 1.0})
	build := func(rg *randoms.Generator) (Model, error) {
		return NewModelList(rg, cfg, newNoisy("n"))
	}

	results, err := NewEnsemble(build, 1, 2, 1).Run(context.Background(), Config{Steps: 20, Record: []string{"n.x"}})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	last := func(r *Result) float64 {
		s, _ := r.Series("n.x")
		return s[len(s)-1]
	}
	if last(results[0]) != last(results[2]) {
		t.Error("equal seeds produced different trajectories")
	}
	if last(results[0]) == last(results[1]) {
		t.Error("different seeds produced identical trajectories")
	}
}

func TestEnsembleBuildError(t *testing.T) {
	cfg, _ := config.New(map[string]any{})
	build := func(rg *randoms.Generator) (Model, error) {
		return NewModelList(rg, cfg, newNoisy("n"))
	}
	if _, err := NewEnsemble(build, 1).Run(context.Background(), Config{Steps: 1}); err == nil {
		t.Error("expected construction error to surface")
	}
}
