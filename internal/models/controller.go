package models

import (
	"github.com/juju/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/control"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type orbitController struct {
	sim.Leaf
	leader, follower, clock string
	pid                     *control.PID
	mass                    float64
	period                  int64
	target                  sim.Vector

	t           sim.Ref[int64]
	rLeader     sim.Ref[sim.Vector]
	vLeader     sim.Ref[sim.Vector]
	validLeader sim.Ref[bool]
	rFollower   sim.Ref[sim.Vector]
	vFollower   sim.Ref[sim.Vector]
	validFollow sim.Ref[bool]

	q      *sim.Field[quat.Number]
	dr     *sim.Field[sim.Vector]
	dv     *sim.Field[sim.Vector]
	jCmd   *sim.Field[sim.Vector]
	firing *sim.Field[bool]
	fires  *sim.Field[int64]
}

// OrbitController keeps the follower at the relative position
// "<prefix>.dr.hill" in the leader's Hill frame. Both orbits are taken from
// the flight computer estimators registered under leader and follower.
// Every "<prefix>.period.ns" of clock time, once both estimates are valid,
// the controller fires: it computes a velocity change with gains
// "<prefix>.kp", "<prefix>.ki" and "<prefix>.kd" and publishes the matching
// impulse for a spacecraft of mass "<prefix>.m" in "J.cmd" (N s, ECI). On
// every other tick "J.cmd" is zero.
func OrbitController(prefix, leader, follower, clock string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		c := &orbitController{Leaf: sim.NewLeaf(prefix), leader: leader, follower: follower, clock: clock}

		c.pid = control.NewPID(0, 0, 0)
		for _, k := range []string{"kp", "ki", "kd"} {
			x, err := nonNegative(cfg, c.Key(k))
			if err != nil {
				return nil, err
			}
			if err := c.pid.SetParam(k, x); err != nil {
				return nil, errors.Trace(err)
			}
		}
		logger.Debugf("%s: gains %v", prefix, c.pid.GetParams())

		var err error
		if c.mass, err = positive(cfg, c.Key("m")); err != nil {
			return nil, err
		}
		if c.period, err = cfg.Integer(c.Key("period.ns")); err != nil {
			return nil, err
		}
		if c.period <= 0 {
			return nil, &config.Error{Key: c.Key("period.ns"), Reason: "must be positive"}
		}
		if c.target, err = cfg.Vector(c.Key("dr.hill"), 3); err != nil {
			return nil, err
		}

		c.q = sim.Declare(&c.Leaf, "q.hill_eci", quat.Number{Real: 1})
		c.dr = sim.Declare(&c.Leaf, "dr.hill", make(sim.Vector, 3))
		c.dv = sim.Declare(&c.Leaf, "dv.hill", make(sim.Vector, 3))
		c.jCmd = sim.Declare(&c.Leaf, "J.cmd", make(sim.Vector, 3))
		c.firing = sim.Declare(&c.Leaf, "firing", false)
		c.fires = sim.Declare(&c.Leaf, "fires", int64(0))
		return c, nil
	}
}

func (c *orbitController) Resolve(r sim.Registry) (err error) {
	if c.t, err = sim.Input[int64](r, c.clock+".t.ns"); err != nil {
		return err
	}
	for _, in := range []struct {
		ref  *sim.Ref[sim.Vector]
		name string
	}{
		{&c.rLeader, c.leader + ".r.eci"},
		{&c.vLeader, c.leader + ".v.eci"},
		{&c.rFollower, c.follower + ".r.eci"},
		{&c.vFollower, c.follower + ".v.eci"},
	} {
		if *in.ref, err = sim.Input[sim.Vector](r, in.name); err != nil {
			return err
		}
	}
	if c.validLeader, err = sim.Input[bool](r, c.leader+".is_valid"); err != nil {
		return err
	}
	c.validFollow, err = sim.Input[bool](r, c.follower+".is_valid")
	return err
}

func (c *orbitController) Step() error {
	c.firing.Set(false)
	c.jCmd.Set(make(sim.Vector, 3))
	if !c.validLeader.Get() || !c.validFollow.Get() {
		return nil
	}

	rl, vl := c.rLeader.Get(), c.vLeader.Get()
	q := HillFrame(rl, vl)
	if quat.IsNaN(q) || quat.IsInf(q) {
		return errors.Annotatef(sim.ErrDiverged, "%s: degenerate leader orbit", c.Prefix())
	}
	dr := sim.Rotate(q, c.rFollower.Get().Sub(rl))
	dv := sim.Rotate(q, c.vFollower.Get().Sub(vl))
	c.q.Set(q)
	c.dr.Set(dr)
	c.dv.Set(dv)

	if c.t.Get()%c.period != 0 {
		return nil
	}
	dvCmd := c.pid.Compute(dr.Sub(c.target), dv, nanosToSeconds(c.period))
	c.jCmd.Set(sim.Rotate(quat.Conj(q), dvCmd).Scale(c.mass))
	c.firing.Set(true)
	c.fires.Set(c.fires.Get() + 1)
	return nil
}
