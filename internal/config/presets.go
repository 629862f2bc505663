package config

import (
	"sort"

	"github.com/juju/errors"
)

// Orbital defaults for the presets below.
const (
	DefaultDtNs     = 100_000_000
	DefaultRadius   = 6_800_000.0
	DefaultSpeed    = 5413.6 // per in-plane axis, 45 degree inclination
	DefaultMass     = 4.0
	DefaultGpsSigma = 5.0
)

var Presets = map[string]map[string]any{
	"truth/base": {
		"truth.t.ns":                int64(0),
		"truth.dt.ns":               int64(DefaultDtNs),
		"truth.leader.orbit.r":      []float64{DefaultRadius, 0, 0},
		"truth.leader.orbit.v":      []float64{0, DefaultSpeed, DefaultSpeed},
		"truth.leader.orbit.j2":     true,
		"truth.leader.orbit.method": "rk4",
	},
	"truth/deployment": {
		"truth.follower.orbit.r":          []float64{DefaultRadius + 100, 0, 0},
		"truth.follower.orbit.v":          []float64{0, DefaultSpeed + 0.05, DefaultSpeed},
		"truth.follower.orbit.j2":         true,
		"truth.follower.orbit.method":     "rk4",
		"truth.follower.orbit.m":          DefaultMass,
		"truth.follower.thruster.J.max":   0.05,
		"truth.follower.thruster.J.sigma": 0.05,
	},
	"sensors/base": {
		"sensors.leader.gps.r.sigma":   DefaultGpsSigma,
		"sensors.leader.gps.v.sigma":   0.05,
		"sensors.follower.gps.r.sigma": DefaultGpsSigma,
		"sensors.follower.gps.v.sigma": 0.05,
	},
	"fc/base": {
		"fc.leader.orbit.alpha":                  0.2,
		"fc.leader.orbit.beta":                   0.2,
		"fc.follower.orbit.alpha":                0.2,
		"fc.follower.orbit.beta":                 0.2,
		"fc.follower.orbit_controller.kp":        1e-3,
		"fc.follower.orbit_controller.ki":        0.0,
		"fc.follower.orbit_controller.kd":        0.1,
		"fc.follower.orbit_controller.m":         DefaultMass,
		"fc.follower.orbit_controller.period.ns": int64(10_000_000_000),
		"fc.follower.orbit_controller.dr.hill":   []float64{0, -50, 0},
	},
	"fc/relative_orbit": {
		"fc.follower.relative_orbit.measurement.r.sigma": 7.1, // both receivers
		"fc.follower.relative_orbit.measurement.v.sigma": 0.071,
		"fc.follower.relative_orbit.process.r.sigma":     1e-3,
		"fc.follower.relative_orbit.process.v.sigma":     1e-4,
	},
}

// Preset returns the named parameter set.
func Preset(name string) (*Configuration, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, errors.NotFoundf("preset %q (available: %v)", name, ListPresets())
	}
	return New(p)
}

// FromPresets merges the named presets in order.
func FromPresets(names ...string) (*Configuration, error) {
	cfgs := make([]*Configuration, 0, len(names))
	for _, n := range names {
		c, err := Preset(n)
		if err != nil {
			return nil, err
		}
		cfgs = append(cfgs, c)
	}
	return Merge(cfgs...), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
