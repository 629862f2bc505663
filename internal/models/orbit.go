package models

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/integrators"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

var logger = loggo.GetLogger("psim.models")

type OrbitOption func(*orbitOptions)

type orbitOptions struct {
	impulse string
}

// WithImpulse applies the impulse vector (N s, ECI) held by the named field
// to the velocity at the start of every step. The orbit then also requires
// "<prefix>.m", the spacecraft mass in kg.
func WithImpulse(field string) OrbitOption {
	return func(o *orbitOptions) { o.impulse = field }
}

type orbit struct {
	sim.Leaf
	opts    orbitOptions
	clock   string
	gravity Gravity
	integ   integrators.Integrator
	mass    float64
	elapsed float64

	dt      sim.Ref[int64]
	impulse sim.Ref[sim.Vector]

	r *sim.Field[sim.Vector]
	v *sim.Field[sim.Vector]
	e *sim.Field[float64]
}

// Orbit propagates the truth orbit of one spacecraft. The initial state is
// "<prefix>.r" and "<prefix>.v" (m, m/s, ECI), or a two line element set
// "<prefix>.tle.line1", "<prefix>.tle.line2" evaluated at the RFC 3339 time
// "<prefix>.tle.epoch". "<prefix>.j2" toggles the J2 perturbation and
// "<prefix>.method" names the integrator. The step size comes from the
// clock registered under the clock prefix.
func Orbit(prefix, clock string, opts ...OrbitOption) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		o := &orbit{Leaf: sim.NewLeaf(prefix), clock: clock}
		for _, opt := range opts {
			opt(&o.opts)
		}

		r, v, err := initialState(cfg, &o.Leaf)
		if err != nil {
			return nil, err
		}
		if o.gravity.J2, err = cfg.Bool(o.Key("j2")); err != nil {
			return nil, err
		}
		method, err := cfg.String(o.Key("method"))
		if err != nil {
			return nil, err
		}
		if o.integ, err = integrators.New(method); err != nil {
			return nil, &config.Error{Key: o.Key("method"), Reason: err.Error()}
		}
		if o.opts.impulse != "" {
			if o.mass, err = positive(cfg, o.Key("m")); err != nil {
				return nil, err
			}
		}

		o.r = sim.Declare(&o.Leaf, "r.eci", r)
		o.v = sim.Declare(&o.Leaf, "v.eci", v)
		o.e = sim.Declare(&o.Leaf, "E", SpecificEnergy(r, v))
		logger.Debugf("%s: initial |r| = %.1f m, |v| = %.3f m/s", prefix, r.Norm(), v.Norm())
		return o, nil
	}
}

func initialState(cfg *config.Configuration, l *sim.Leaf) (sim.Vector, sim.Vector, error) {
	if cfg.Has(l.Key("tle.line1")) {
		return tleState(cfg, l)
	}
	r, err := cfg.Vector(l.Key("r"), 3)
	if err != nil {
		return nil, nil, err
	}
	v, err := cfg.Vector(l.Key("v"), 3)
	if err != nil {
		return nil, nil, err
	}
	return r, v, nil
}

// tleState evaluates SGP4 at the configured epoch. go-satellite works in
// kilometres; fields hold metres.
func tleState(cfg *config.Configuration, l *sim.Leaf) (sim.Vector, sim.Vector, error) {
	line1, err := cfg.String(l.Key("tle.line1"))
	if err != nil {
		return nil, nil, err
	}
	line2, err := cfg.String(l.Key("tle.line2"))
	if err != nil {
		return nil, nil, err
	}
	stamp, err := cfg.String(l.Key("tle.epoch"))
	if err != nil {
		return nil, nil, err
	}
	epoch, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil, nil, &config.Error{Key: l.Key("tle.epoch"), Reason: err.Error()}
	}
	epoch = epoch.UTC()

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	year, month, day := epoch.Date()
	hour, min, sec := epoch.Clock()
	pos, vel := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	const kmToM = 1000.0
	r := sim.Vector{pos.X * kmToM, pos.Y * kmToM, pos.Z * kmToM}
	v := sim.Vector{vel.X * kmToM, vel.Y * kmToM, vel.Z * kmToM}
	if !r.IsValid() || !v.IsValid() || r.Norm() < EarthRadius {
		return nil, nil, &config.Error{Key: l.Key("tle.line1"), Reason: "element set does not propagate to a valid orbit"}
	}
	return r, v, nil
}

func (o *orbit) Resolve(r sim.Registry) (err error) {
	if o.dt, err = sim.Input[int64](r, o.clock+".dt.ns"); err != nil {
		return err
	}
	if o.opts.impulse != "" {
		if o.impulse, err = sim.Input[sim.Vector](r, o.opts.impulse); err != nil {
			return err
		}
	}
	return nil
}

func (o *orbit) Step() error {
	dt := nanosToSeconds(o.dt.Get())

	r, v := o.r.Get(), o.v.Get()
	if o.opts.impulse != "" {
		v = v.Add(o.impulse.Get().Scale(1 / o.mass))
	}

	x := o.integ.Step(o.gravity, append(r, v...), o.elapsed, dt)
	if !x.IsValid() {
		return errors.Annotatef(sim.ErrDiverged, "%s", o.Prefix())
	}
	o.elapsed += dt

	o.r.Set(x[:3])
	o.v.Set(x[3:])
	o.e.Set(SpecificEnergy(x[:3], x[3:]))
	return nil
}
