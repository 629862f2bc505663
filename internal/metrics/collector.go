package metrics

import (
	"net/http"
	"time"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/psim/internal/sim"
)

// Collector bundles the Prometheus metrics exported while simulations
// run. Every series is labeled by simulation name.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks         *prometheus.CounterVec
	StepErrors    *prometheus.CounterVec
	StepDurations *prometheus.HistogramVec
	Fields        *prometheus.GaugeVec
}

// NewCollector registers the simulation metrics against reg, defaulting to
// the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "psim_ticks_total",
		Help: "Completed simulation ticks.",
	}, []string{"simulation"}), "psim_ticks_total")
	if err != nil {
		return nil, err
	}
	stepErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "psim_step_errors_total",
		Help: "Ticks that ended with a model error.",
	}, []string{"simulation"}), "psim_step_errors_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "psim_step_duration_seconds",
		Help:    "Wall-clock time spent stepping the root model once.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"simulation"})
	if err := reg.Register(durations); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, errors.AlreadyExistsf("collector psim_step_duration_seconds with an incompatible type")
		}
		durations = existing
	}

	fields := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "psim_field_value",
		Help: "Latest value of a watched field, vectors reduced to their norm.",
	}, []string{"simulation", "field"})
	if err := reg.Register(fields); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return nil, errors.AlreadyExistsf("collector psim_field_value with an incompatible type")
		}
		fields = existing
	}

	return &Collector{
		gatherer:      gatherer,
		Ticks:         ticks,
		StepErrors:    stepErrors,
		StepDurations: durations,
		Fields:        fields,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Recorder returns the step recorder and observer for one simulation.
// Attach it with sim.Simulation.SetRecorder and AddObserver.
func (c *Collector) Recorder(simulation string, watch ...string) *Recorder {
	return &Recorder{c: c, simulation: simulation, watch: watch}
}

// Recorder feeds one simulation's ticks into a Collector.
type Recorder struct {
	c          *Collector
	simulation string
	watch      []string
}

func (r *Recorder) ObserveStep(d time.Duration, err error) {
	if r == nil || r.c == nil {
		return
	}
	r.c.StepDurations.WithLabelValues(r.simulation).Observe(d.Seconds())
	if err != nil {
		r.c.StepErrors.WithLabelValues(r.simulation).Inc()
		return
	}
	r.c.Ticks.WithLabelValues(r.simulation).Inc()
}

func (r *Recorder) OnStep(tick uint64, m sim.Model) {
	if r == nil || r.c == nil {
		return
	}
	for _, name := range r.watch {
		v, err := sim.GetField(m, name)
		if err != nil {
			continue
		}
		if x, ok := sim.Real(v); ok {
			r.c.Fields.WithLabelValues(r.simulation, name).Set(x)
		}
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.AlreadyExistsf("collector %s with an incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
