package models

import (
	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/integrators"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type orbitEstimator struct {
	sim.Leaf
	sensor, truth, clock string
	alpha, beta          float64
	gravity              Gravity
	integ                integrators.Integrator

	dt     sim.Ref[int64]
	zr     sim.Ref[sim.Vector]
	zv     sim.Ref[sim.Vector]
	zValid sim.Ref[bool]
	rTruth sim.Ref[sim.Vector]
	vTruth sim.Ref[sim.Vector]

	r     *sim.Field[sim.Vector]
	v     *sim.Field[sim.Vector]
	valid *sim.Field[bool]
	rErr  *sim.Field[float64]
	vErr  *sim.Field[float64]
}

// OrbitEstimator is the flight computer's alpha-beta orbit filter. Each
// step propagates the previous estimate over one tick and blends it with
// the sensor's measurement using gains "<prefix>.alpha" (position) and
// "<prefix>.beta" (velocity), both in (0, 1]. The estimate is seeded by
// the first valid measurement. "r.error" and "v.error" hold the distance
// to the truth orbit; flight software must not read them.
func OrbitEstimator(prefix, sensor, truth, clock string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		e := &orbitEstimator{
			Leaf:    sim.NewLeaf(prefix),
			sensor:  sensor,
			truth:   truth,
			clock:   clock,
			gravity: Gravity{J2: true},
			integ:   integrators.NewRK4(),
		}

		var err error
		if e.alpha, err = gain(cfg, e.Key("alpha")); err != nil {
			return nil, err
		}
		if e.beta, err = gain(cfg, e.Key("beta")); err != nil {
			return nil, err
		}

		e.r = sim.Declare(&e.Leaf, "r.eci", make(sim.Vector, 3))
		e.v = sim.Declare(&e.Leaf, "v.eci", make(sim.Vector, 3))
		e.valid = sim.Declare(&e.Leaf, "is_valid", false)
		e.rErr = sim.Declare(&e.Leaf, "r.error", 0.0)
		e.vErr = sim.Declare(&e.Leaf, "v.error", 0.0)
		return e, nil
	}
}

func gain(cfg *config.Configuration, key string) (float64, error) {
	x, err := cfg.Real(key)
	if err != nil {
		return 0, err
	}
	if x <= 0 || x > 1 {
		return 0, &config.Error{Key: key, Reason: "must be in (0, 1]"}
	}
	return x, nil
}

func (e *orbitEstimator) Resolve(r sim.Registry) (err error) {
	if e.dt, err = sim.Input[int64](r, e.clock+".dt.ns"); err != nil {
		return err
	}
	if e.zr, err = sim.Input[sim.Vector](r, e.sensor+".r.eci"); err != nil {
		return err
	}
	if e.zv, err = sim.Input[sim.Vector](r, e.sensor+".v.eci"); err != nil {
		return err
	}
	if e.zValid, err = sim.Input[bool](r, e.sensor+".valid"); err != nil {
		return err
	}
	if e.rTruth, err = sim.Input[sim.Vector](r, e.truth+".r.eci"); err != nil {
		return err
	}
	e.vTruth, err = sim.Input[sim.Vector](r, e.truth+".v.eci")
	return err
}

func (e *orbitEstimator) Step() error {
	if e.valid.Get() {
		x := e.integ.Step(e.gravity, append(e.r.Get(), e.v.Get()...), 0, nanosToSeconds(e.dt.Get()))
		if !x.IsValid() {
			return errors.Annotatef(sim.ErrDiverged, "%s", e.Prefix())
		}
		e.r.Set(x[:3])
		e.v.Set(x[3:])
	}

	if e.zValid.Get() {
		zr, zv := e.zr.Get(), e.zv.Get()
		if !e.valid.Get() {
			e.r.Set(zr)
			e.v.Set(zv)
			e.valid.Set(true)
		} else {
			r, v := e.r.Get(), e.v.Get()
			e.r.Set(r.Add(zr.Sub(r).Scale(e.alpha)))
			e.v.Set(v.Add(zv.Sub(v).Scale(e.beta)))
		}
	}

	if e.valid.Get() {
		e.rErr.Set(e.r.Get().Sub(e.rTruth.Get()).Norm())
		e.vErr.Set(e.v.Get().Sub(e.vTruth.Get()).Norm())
	}
	return nil
}
