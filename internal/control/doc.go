// Package control provides the candidate lateral control laws.
//
// Every law implements [lateral.Controller] and is driven once per control tick:
//
//   - [PID]: steering-angle PID with speed-scheduled gains and feedforward
//   - [INDI]: incremental nonlinear dynamic inversion with a 3-state observer
//   - [LQR]: linear quadratic regulator with a 2-state observer and integrator
//   - [Torque]: lateral-acceleration PID with friction compensation
//   - [Fixed]: passthrough law returning a manually set candidate
//
// # Usage
//
//	bank, err := control.NewBank(cfg)
//	cand, err := bank[lateral.LQR].Update(active, in)
//
// Laws clamp their own output to [-lateral.SteerMax, lateral.SteerMax] and
// return a zero torque whenever they are inactive or below the minimum
// steering speed.
package control
