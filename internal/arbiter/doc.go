// Package arbiter turns the candidate outputs of the four steering laws into
// one command per cycle.
//
// Components:
//   - Select: pure zone selection with the previous-output closeness rule
//   - Blender: resolves torque and angle, clamps, and builds diagnostics
//   - Orchestrator: owns the controller bank and the engagement state machine
//
// Usage:
//
//	orch, err := arbiter.New(cfg, logger)
//	cmd := orch.Update(active, input)
package arbiter
