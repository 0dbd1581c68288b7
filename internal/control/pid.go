package control

import (
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

// PID tracks the desired steering angle with a speed-scheduled loop and a
// feedforward proportional to angle times speed squared.
type PID struct {
	veh  Vehicle
	loop *Loop
	sat  satTimer
}

func NewPID(veh Vehicle, t config.PIDTuning) *PID {
	return &PID{
		veh:  veh,
		loop: NewLoop(t.KpBP, t.KpV, t.KiBP, t.KiV, t.KdBP, t.KdV, t.Kf),
		sat:  satTimer{limit: veh.SteerLimitTimer},
	}
}

func (p *PID) Update(active bool, in lateral.Input) (lateral.Candidate, error) {
	v := in.State.SpeedMPS
	desired := rad2deg(p.veh.SteerFromCurvature(in.Targets.Curvature, v)) + in.Aux.AngleOffsetDeg

	cand := lateral.Candidate{DesiredAngleDeg: desired}
	cand.Terms.SteeringAngleDeg = in.State.SteeringAngleDeg

	if !p.veh.engaged(active, v) {
		p.loop.Reset()
		return cand, nil
	}

	err := desired - in.State.SteeringAngleDeg
	ff := (desired - in.Aux.AngleOffsetDeg) * v * v
	out := p.loop.Update(err, 0, v, ff, in.State.SteeringPressed, false)

	cand.Torque = out
	cand.Saturated = p.sat.update(out, in)
	cand.Terms.PID = lateral.PIDTerms{P: p.loop.P, I: p.loop.I, F: p.loop.F}
	return cand, nil
}

// Reset clears integral and saturation state.
func (p *PID) Reset() {
	p.loop.Reset()
	p.sat.reset()
}
