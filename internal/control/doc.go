// Package control provides the feedback laws used by flight computer
// models:
//
//   - [PID]: per-axis Proportional-Integral-Derivative law on vectors
//
// # Usage
//
//	pid := control.NewPID(1e-3, 0, 0.1)  // Kp, Ki, Kd
//	dv := pid.Compute(posErr, velErr, dt) // correction opposing the error
//
// Gains are addressed by name ("kp", "ki", "kd") through GetParams and
// SetParam, the same names the flight computer reads from configuration.
package control
