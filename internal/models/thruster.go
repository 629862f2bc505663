package models

import (
	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type thruster struct {
	sim.Leaf
	command string
	rg      *randoms.Generator
	max     float64
	sigma   float64

	cmd sim.Ref[sim.Vector]

	j     *sim.Field[sim.Vector]
	total *sim.Field[float64]
}

// Thruster executes the impulse commanded in "<command>.J.cmd". Commands
// longer than "<prefix>.J.max" (N s) are scaled down to it, and each
// executed impulse picks up gaussian error proportional to its magnitude
// with relative standard deviation "<prefix>.J.sigma". Randoms are drawn
// only on ticks that fire. The result is "J.eci"; "J.total" accumulates
// the executed magnitude.
func Thruster(prefix, command string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		t := &thruster{Leaf: sim.NewLeaf(prefix), command: command, rg: rg}

		var err error
		if t.max, err = positive(cfg, t.Key("J.max")); err != nil {
			return nil, err
		}
		if t.sigma, err = nonNegative(cfg, t.Key("J.sigma")); err != nil {
			return nil, err
		}

		t.j = sim.Declare(&t.Leaf, "J.eci", make(sim.Vector, 3))
		t.total = sim.Declare(&t.Leaf, "J.total", 0.0)
		return t, nil
	}
}

func (t *thruster) Resolve(r sim.Registry) (err error) {
	t.cmd, err = sim.Input[sim.Vector](r, t.command+".J.cmd")
	return err
}

func (t *thruster) Step() error {
	j := t.cmd.Get()
	n := j.Norm()
	if n == 0 {
		t.j.Set(j)
		return nil
	}
	if n > t.max {
		j = j.Scale(t.max / n)
		n = t.max
	}
	j = j.Add(t.rg.NormalVector(3, t.sigma*n))

	t.j.Set(j)
	t.total.Set(t.total.Get() + j.Norm())
	return nil
}
