// Package models holds the leaf models composed into orbit simulations:
// a clock, orbit truth propagation, a GPS receiver, an alpha-beta orbit
// estimator, a Hill frame relative orbit estimator, a relative orbit
// controller and a thruster.
//
// Each model is exposed as a [sim.Factory] parameterized by its field
// prefix and by the prefixes of the models it reads. Configuration keys
// are read under the model's own prefix, for example "<prefix>.alpha".
// Inputs are bound in Resolve, so a model may read a field declared by a
// model registered after it; it then sees the previous tick's value.
//
// Units are SI throughout. Positions and velocities are ECI unless the
// field name says otherwise, and times are integer nanoseconds.
package models
