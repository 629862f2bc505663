package models

import (
	"math"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

type relativeOrbitEstimator struct {
	sim.Leaf
	leaderSensor, followerSensor string
	leaderTruth, followerTruth   string
	clock                        string

	n    float64 // leader mean motion at the last measurement
	x    *mat.VecDense
	p    *mat.Dense
	q, r *mat.Dense

	dt                 sim.Ref[int64]
	zrLeader, zvLeader sim.Ref[sim.Vector]
	zrFollow, zvFollow sim.Ref[sim.Vector]
	validLeader        sim.Ref[bool]
	validFollow        sim.Ref[bool]
	rLeaderT, vLeaderT sim.Ref[sim.Vector]
	rFollowT, vFollowT sim.Ref[sim.Vector]

	dr, dv       *sim.Field[sim.Vector]
	drErr, dvErr *sim.Field[sim.Vector]
	drSig, dvSig *sim.Field[sim.Vector]
	valid        *sim.Field[bool]
}

// RelativeOrbitEstimator is a Kalman filter on the follower's position
// and velocity relative to the leader, expressed in the leader's rotating
// Hill frame and propagated with the Clohessy-Wiltshire equations. Both
// GPS receivers must be valid to measure. Measurement noise comes from
// "<prefix>.measurement.r.sigma" and "<prefix>.measurement.v.sigma" (both
// positive), per-tick process noise from "<prefix>.process.r.sigma" and
// "<prefix>.process.v.sigma".
//
// "r.hill" and "v.hill" hold the estimate, "r.hill.sigma" and
// "v.hill.sigma" the per-axis standard deviations, and "r.hill.error" and
// "v.hill.error" the difference to the truth orbits; flight software must
// not read the errors.
func RelativeOrbitEstimator(prefix, leaderSensor, followerSensor, leaderTruth, followerTruth, clock string) sim.Factory {
	return func(rg *randoms.Generator, cfg *config.Configuration) (sim.Model, error) {
		e := &relativeOrbitEstimator{
			Leaf:           sim.NewLeaf(prefix),
			leaderSensor:   leaderSensor,
			followerSensor: followerSensor,
			leaderTruth:    leaderTruth,
			followerTruth:  followerTruth,
			clock:          clock,
		}

		var sig [4]float64
		for i, k := range []string{"measurement.r.sigma", "measurement.v.sigma"} {
			x, err := positive(cfg, e.Key(k))
			if err != nil {
				return nil, err
			}
			sig[i] = x
		}
		for i, k := range []string{"process.r.sigma", "process.v.sigma"} {
			x, err := nonNegative(cfg, e.Key(k))
			if err != nil {
				return nil, err
			}
			sig[2+i] = x
		}
		e.r = diagonal(sig[0], sig[1])
		e.q = diagonal(sig[2], sig[3])

		e.dr = sim.Declare(&e.Leaf, "r.hill", make(sim.Vector, 3))
		e.dv = sim.Declare(&e.Leaf, "v.hill", make(sim.Vector, 3))
		e.drErr = sim.Declare(&e.Leaf, "r.hill.error", make(sim.Vector, 3))
		e.dvErr = sim.Declare(&e.Leaf, "v.hill.error", make(sim.Vector, 3))
		e.drSig = sim.Declare(&e.Leaf, "r.hill.sigma", make(sim.Vector, 3))
		e.dvSig = sim.Declare(&e.Leaf, "v.hill.sigma", make(sim.Vector, 3))
		e.valid = sim.Declare(&e.Leaf, "is_valid", false)
		return e, nil
	}
}

// diagonal returns a 6x6 covariance with position variance rs^2 and
// velocity variance vs^2.
func diagonal(rs, vs float64) *mat.Dense {
	d := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		d.Set(i, i, rs*rs)
		d.Set(3+i, 3+i, vs*vs)
	}
	return d
}

func (e *relativeOrbitEstimator) Resolve(r sim.Registry) (err error) {
	if e.dt, err = sim.Input[int64](r, e.clock+".dt.ns"); err != nil {
		return err
	}
	for _, in := range []struct {
		ref  *sim.Ref[sim.Vector]
		name string
	}{
		{&e.zrLeader, e.leaderSensor + ".r.eci"},
		{&e.zvLeader, e.leaderSensor + ".v.eci"},
		{&e.zrFollow, e.followerSensor + ".r.eci"},
		{&e.zvFollow, e.followerSensor + ".v.eci"},
		{&e.rLeaderT, e.leaderTruth + ".r.eci"},
		{&e.vLeaderT, e.leaderTruth + ".v.eci"},
		{&e.rFollowT, e.followerTruth + ".r.eci"},
		{&e.vFollowT, e.followerTruth + ".v.eci"},
	} {
		if *in.ref, err = sim.Input[sim.Vector](r, in.name); err != nil {
			return err
		}
	}
	if e.validLeader, err = sim.Input[bool](r, e.leaderSensor+".valid"); err != nil {
		return err
	}
	e.validFollow, err = sim.Input[bool](r, e.followerSensor+".valid")
	return err
}

func (e *relativeOrbitEstimator) Step() error {
	if e.valid.Get() {
		e.predict(nanosToSeconds(e.dt.Get()))
	}

	if e.validLeader.Get() && e.validFollow.Get() {
		z, n, err := RelativeState(e.zrLeader.Get(), e.zvLeader.Get(), e.zrFollow.Get(), e.zvFollow.Get())
		if err != nil {
			return errors.Annotatef(err, "%s: measurement", e.Prefix())
		}
		e.n = n
		if !e.valid.Get() {
			e.x = mat.NewVecDense(6, z)
			e.p = mat.DenseCopyOf(e.r)
			e.valid.Set(true)
		} else if err := e.update(mat.NewVecDense(6, z)); err != nil {
			return err
		}
	}

	if !e.valid.Get() {
		return nil
	}
	x := e.x.RawVector().Data
	if !sim.Vector(x).IsValid() {
		return errors.Annotatef(sim.ErrDiverged, "%s", e.Prefix())
	}
	e.dr.Set(sim.Vector{x[0], x[1], x[2]})
	e.dv.Set(sim.Vector{x[3], x[4], x[5]})
	e.drSig.Set(sim.Vector{math.Sqrt(e.p.At(0, 0)), math.Sqrt(e.p.At(1, 1)), math.Sqrt(e.p.At(2, 2))})
	e.dvSig.Set(sim.Vector{math.Sqrt(e.p.At(3, 3)), math.Sqrt(e.p.At(4, 4)), math.Sqrt(e.p.At(5, 5))})

	truth, _, err := RelativeState(e.rLeaderT.Get(), e.vLeaderT.Get(), e.rFollowT.Get(), e.vFollowT.Get())
	if err != nil {
		return errors.Annotatef(err, "%s: truth", e.Prefix())
	}
	e.drErr.Set(e.dr.Get().Sub(truth[:3]))
	e.dvErr.Set(e.dv.Get().Sub(truth[3:]))
	return nil
}

func (e *relativeOrbitEstimator) predict(dt float64) {
	phi := ClohessyWiltshire(e.n, dt)

	var x mat.VecDense
	x.MulVec(phi, e.x)
	e.x = &x

	var phiP, phiPPhi, p mat.Dense
	phiP.Mul(phi, e.p)
	phiPPhi.Mul(&phiP, phi.T())
	p.Add(&phiPPhi, e.q)
	e.p = &p
}

func (e *relativeOrbitEstimator) update(z *mat.VecDense) error {
	var s, sInv mat.Dense
	s.Add(e.p, e.r)
	if err := sInv.Inverse(&s); err != nil {
		return errors.Annotatef(sim.ErrDiverged, "%s: innovation covariance: %v", e.Prefix(), err)
	}
	var k mat.Dense
	k.Mul(e.p, &sInv)

	var y, dx, x mat.VecDense
	y.SubVec(z, e.x)
	dx.MulVec(&k, &y)
	x.AddVec(e.x, &dx)
	e.x = &x

	var ik, p mat.Dense
	ik.Sub(identity6, &k)
	p.Mul(&ik, e.p)
	e.p = &p
	return nil
}

var identity6 = diagonal(1, 1)

// RelativeState returns the follower's position and velocity relative to
// the leader in the leader's rotating Hill frame, stacked as
// [x y z vx vy vz], along with the leader's orbital rate.
func RelativeState(rl, vl, rf, vf sim.Vector) ([]float64, float64, error) {
	q := HillFrame(rl, vl)
	n := rl.Cross(vl).Norm() / rl.Dot(rl)
	if !(n > 0) || math.IsInf(n, 0) {
		return nil, 0, errors.Annotate(sim.ErrDiverged, "degenerate leader orbit")
	}
	dr := sim.Rotate(q, rf.Sub(rl))
	dv := sim.Rotate(q, vf.Sub(vl))
	// remove the frame rotation, omega = n along the cross-track axis
	return []float64{dr[0], dr[1], dr[2], dv[0] + n*dr[1], dv[1] - n*dr[0], dv[2]}, n, nil
}

// ClohessyWiltshire returns the state transition matrix over t seconds of
// the linearized relative motion about a circular orbit with rate n, for
// the state [x y z vx vy vz] with x radial, y along-track and z
// cross-track.
func ClohessyWiltshire(n, t float64) *mat.Dense {
	s, c := math.Sincos(n * t)
	nt := n * t
	return mat.NewDense(6, 6, []float64{
		4 - 3*c, 0, 0, s / n, 2 * (1 - c) / n, 0,
		6 * (s - nt), 1, 0, -2 * (1 - c) / n, (4*s - 3*nt) / n, 0,
		0, 0, c, 0, 0, s / n,
		3 * n * s, 0, 0, c, 2 * s, 0,
		-6 * n * (1 - c), 0, 0, -2 * s, 4*c - 3, 0,
		0, 0, -n * s, 0, 0, c,
	})
}
