package sim

import (
	"context"
	"time"

	"github.com/juju/errors"
)

type Observer interface {
	OnStep(tick uint64, m Model)
}

// Metric summarises a run from field values observed after every tick.
type Metric interface {
	Name() string
	Observe(m Model) error
	Value() float64
	Reset()
}

// StepRecorder receives the wall-clock cost and outcome of each tick.
type StepRecorder interface {
	ObserveStep(d time.Duration, err error)
}

type Config struct {
	Steps  int
	Record []string
}

type Result struct {
	Ticks      []uint64
	Samples    map[string][]any
	Metrics    map[string]float64
	StepsTaken int
}

// Series returns the samples of a recorded field converted with [Real].
func (r *Result) Series(name string) ([]float64, error) {
	samples, ok := r.Samples[name]
	if !ok {
		return nil, &UnknownFieldError{Name: name}
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		v, ok := Real(s)
		if !ok {
			return nil, errors.NotValidf("field %q: sample %d of type %T", name, i, s)
		}
		out[i] = v
	}
	return out, nil
}

// Simulation drives a root model for a number of ticks, recording fields
// and feeding metrics and observers after each one.
type Simulation struct {
	model     Model
	metrics   []Metric
	observers []Observer
	recorder  StepRecorder
	ticks     uint64
}

func New(m Model) *Simulation {
	return &Simulation{
		model:     m,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulation) AddMetric(m Metric)           { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer)       { s.observers = append(s.observers, o) }
func (s *Simulation) SetRecorder(r StepRecorder)   { s.recorder = r }
func (s *Simulation) Model() Model                 { return s.model }
func (s *Simulation) Get(name string) (any, error) { return GetField(s.model, name) }
func (s *Simulation) Set(name string, v any) error { return SetField(s.model, name, v) }

// Step advances the model by one tick.
func (s *Simulation) Step() error {
	start := time.Now()
	err := s.model.Step()
	if s.recorder != nil {
		s.recorder.ObserveStep(time.Since(start), err)
	}
	if err != nil {
		return err
	}
	s.ticks++
	return nil
}

// Run takes cfg.Steps ticks. The context is checked between ticks; a
// model failure ends the run and is returned with the partial result.
func (s *Simulation) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Steps <= 0 {
		return nil, errors.NotValidf("step count %d", cfg.Steps)
	}
	for _, name := range cfg.Record {
		if _, err := s.model.Field(name); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Ticks:   make([]uint64, 0, cfg.Steps+1),
		Samples: make(map[string][]any, len(cfg.Record)),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.record(result, cfg.Record)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			return result, err
		}
		result.StepsTaken++

		for _, obs := range s.observers {
			obs.OnStep(s.ticks, s.model)
		}
		for _, m := range s.metrics {
			if err := m.Observe(s.model); err != nil {
				return result, errors.Annotatef(err, "metric %s", m.Name())
			}
		}
		s.record(result, cfg.Record)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (s *Simulation) record(result *Result, names []string) {
	result.Ticks = append(result.Ticks, s.ticks)
	for _, name := range names {
		v, _ := GetField(s.model, name)
		result.Samples[name] = append(result.Samples[name], v)
	}
}
