package models

import (
	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type clock struct {
	sim.Leaf
	t  *sim.Field[int64]
	dt *sim.Field[int64]
	s  *sim.Field[float64]
}

// Clock keeps simulation time. It owns "<prefix>.t.ns", "<prefix>.dt.ns"
// and "<prefix>.t.s", configured by the keys of the same name, and should
// be registered first so every later model sees the current tick's time.
func Clock(prefix string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		c := &clock{Leaf: sim.NewLeaf(prefix)}

		t0, err := cfg.Integer(c.Key("t.ns"))
		if err != nil {
			return nil, err
		}
		dt, err := cfg.Integer(c.Key("dt.ns"))
		if err != nil {
			return nil, err
		}
		if dt <= 0 {
			return nil, &config.Error{Key: c.Key("dt.ns"), Reason: "must be positive"}
		}

		c.t = sim.Declare(&c.Leaf, "t.ns", t0)
		c.dt = sim.Declare(&c.Leaf, "dt.ns", dt)
		c.s = sim.Declare(&c.Leaf, "t.s", nanosToSeconds(t0))
		return c, nil
	}
}

func (c *clock) Step() error {
	t := c.t.Get() + c.dt.Get()
	c.t.Set(t)
	c.s.Set(nanosToSeconds(t))
	return nil
}

func nanosToSeconds(ns int64) float64 {
	return float64(ns) * 1e-9
}
