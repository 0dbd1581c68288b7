// Package lateral provides the shared vocabulary of the lateral arbitration stack.
//
// The package defines the types that flow through one control cycle:
//
//   - [ControllerID]: identifies one of the four candidate control laws
//   - [BlendMode]: how candidates are combined (speed zoned, angle zoned, angle weighted)
//   - [Input]: vehicle state, kinematic targets and auxiliary data for one cycle
//   - [Candidate]: one control law's proposed command
//   - [Controller]: the capability every control law exposes
//   - [Command]: the arbitrated result with its [Diagnostics]
//
// # Cycle
//
//	in := lateral.Input{State: vs, Targets: tg}
//	cmd := orch.Update(active, in)
//	// cmd.Torque is always within [-SteerMax, SteerMax]
//
// # Thread Safety
//
// Controllers are NOT thread-safe. They advance internal state exactly once per
// call to Update and must be driven from a single control loop.
package lateral
