package models

import (
	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type gps struct {
	sim.Leaf
	truth  string
	rg     *randoms.Generator
	rSigma float64
	vSigma float64

	rTruth sim.Ref[sim.Vector]
	vTruth sim.Ref[sim.Vector]

	r     *sim.Field[sim.Vector]
	v     *sim.Field[sim.Vector]
	valid *sim.Field[bool]
}

// Gps measures the position and velocity of the orbit registered under
// truth with white gaussian noise of standard deviation "<prefix>.r.sigma"
// (m) and "<prefix>.v.sigma" (m/s) per axis. Every step draws six normal
// variates from the shared generator, position first.
func Gps(prefix, truth string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		g := &gps{Leaf: sim.NewLeaf(prefix), truth: truth, rg: rg}

		var err error
		if g.rSigma, err = nonNegative(cfg, g.Key("r.sigma")); err != nil {
			return nil, err
		}
		if g.vSigma, err = nonNegative(cfg, g.Key("v.sigma")); err != nil {
			return nil, err
		}

		g.r = sim.Declare(&g.Leaf, "r.eci", make(sim.Vector, 3))
		g.v = sim.Declare(&g.Leaf, "v.eci", make(sim.Vector, 3))
		g.valid = sim.Declare(&g.Leaf, "valid", false)
		return g, nil
	}
}

func (g *gps) Resolve(r sim.Registry) (err error) {
	if g.rTruth, err = sim.Input[sim.Vector](r, g.truth+".r.eci"); err != nil {
		return err
	}
	g.vTruth, err = sim.Input[sim.Vector](r, g.truth+".v.eci")
	return err
}

func (g *gps) Step() error {
	g.r.Set(g.rTruth.Get().Add(g.rg.NormalVector(3, g.rSigma)))
	g.v.Set(g.vTruth.Get().Add(g.rg.NormalVector(3, g.vSigma)))
	g.valid.Set(true)
	return nil
}

func nonNegative(cfg *config.Configuration, key string) (float64, error) {
	x, err := cfg.Real(key)
	if err != nil {
		return 0, err
	}
	if x < 0 {
		return 0, &config.Error{Key: key, Reason: "must not be negative"}
	}
	return x, nil
}

func positive(cfg *config.Configuration, key string) (float64, error) {
	x, err := cfg.Real(key)
	if err != nil {
		return 0, err
	}
	if x <= 0 {
		return 0, &config.Error{Key: key, Reason: "must be positive"}
	}
	return x, nil
}
