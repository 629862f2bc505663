// Package simulations assembles leaf models into the named compositions a
// harness can run.
//
// [OrbitControllerTest] is the flight computer orbit controller exercised
// against a leader and follower spacecraft. Its models are registered in
// dependency order (truth, sensors, flight computer, actuators) so each
// model sees the current tick's output of everything before it. The
// thruster runs last; its impulse reaches the follower orbit on the next
// tick.
//
// The [Registry] maps simulation names to constructors along with the
// presets each one needs, so the CLI can build any of them from a seed and
// a configuration.
package simulations
