package simulations

import (
	"github.com/juju/errors"

	"github.com/san-kum/psim/internal/config"
	"github.com/san-kum/psim/internal/models"
	"github.com/san-kum/psim/internal/randoms"
	"github.com/san-kum/psim/internal/sim"
)

// Model prefixes shared by the orbit compositions.
const (
	Clock = "truth"

	LeaderTruth   = "truth.leader.orbit"
	FollowerTruth = "truth.follower.orbit"
	Thruster      = "truth.follower.thruster"

	LeaderGps   = "sensors.leader.gps"
	FollowerGps = "sensors.follower.gps"

	LeaderEstimate   = "fc.leader.orbit"
	FollowerEstimate = "fc.follower.orbit"
	Controller       = "fc.follower.orbit_controller"
	RelativeEstimate = "fc.follower.relative_orbit"
)

// OrbitControllerTest is a [sim.ModelList] with fixed membership: the
// truth clock, both truth orbits, both GPS receivers, both orbit
// estimators, the follower's orbit controller and its thruster, stepped in
// that order.
type OrbitControllerTest struct {
	*sim.ModelList
}

// NewOrbitControllerTest builds the composition. Both handles are
// required, and on any failure no value is returned.
func NewOrbitControllerTest(rg *randoms.Generator, cfg *config.Configuration) (*OrbitControllerTest, error) {
	l, err := sim.NewModelList(rg, cfg, orbitControllerTest()...)
	if err != nil {
		return nil, errors.Annotate(err, "orbit controller test")
	}
	return &OrbitControllerTest{ModelList: l}, nil
}

func orbitControllerTest() []sim.Factory {
	return []sim.Factory{
		models.Clock(Clock),
		models.Orbit(LeaderTruth, Clock),
		models.Orbit(FollowerTruth, Clock, models.WithImpulse(Thruster+".J.eci")),
		models.Gps(LeaderGps, LeaderTruth),
		models.Gps(FollowerGps, FollowerTruth),
		models.OrbitEstimator(LeaderEstimate, LeaderGps, LeaderTruth, Clock),
		models.OrbitEstimator(FollowerEstimate, FollowerGps, FollowerTruth, Clock),
		models.OrbitController(Controller, LeaderEstimate, FollowerEstimate, Clock),
		models.Thruster(Thruster, Controller),
	}
}

// NewSingleOrbitGnc builds one spacecraft's truth orbit, GPS and orbit
// estimator, grouped by subsystem.
func NewSingleOrbitGnc(rg *randoms.Generator, cfg *config.Configuration) (*sim.ModelList, error) {
	return sim.NewModelList(rg, cfg,
		models.Clock(Clock),
		sim.Group(models.Orbit(LeaderTruth, Clock)),
		sim.Group(models.Gps(LeaderGps, LeaderTruth)),
		sim.Group(models.OrbitEstimator(LeaderEstimate, LeaderGps, LeaderTruth, Clock)),
	)
}

// NewOrbitEstimatorTest runs both spacecraft open loop: truth orbits,
// sensors and estimators without a controller or thruster.
func NewOrbitEstimatorTest(rg *randoms.Generator, cfg *config.Configuration) (*sim.ModelList, error) {
	return sim.NewModelList(rg, cfg,
		models.Clock(Clock),
		models.Orbit(LeaderTruth, Clock),
		models.Orbit(FollowerTruth, Clock),
		models.Gps(LeaderGps, LeaderTruth),
		models.Gps(FollowerGps, FollowerTruth),
		models.OrbitEstimator(LeaderEstimate, LeaderGps, LeaderTruth, Clock),
		models.OrbitEstimator(FollowerEstimate, FollowerGps, FollowerTruth, Clock),
	)
}

// NewRelativeOrbitEstimatorTest runs both truth orbits and GPS receivers
// into the follower's relative orbit estimator.
func NewRelativeOrbitEstimatorTest(rg *randoms.Generator, cfg *config.Configuration) (*sim.ModelList, error) {
	return sim.NewModelList(rg, cfg,
		models.Clock(Clock),
		models.Orbit(LeaderTruth, Clock),
		models.Orbit(FollowerTruth, Clock),
		models.Gps(LeaderGps, LeaderTruth),
		models.Gps(FollowerGps, FollowerTruth),
		models.RelativeOrbitEstimator(RelativeEstimate, LeaderGps, FollowerGps, LeaderTruth, FollowerTruth, Clock),
	)
}
