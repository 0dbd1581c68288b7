package control

import (
	"math"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

const (
	gravity             = 9.81
	lowSpeedFactor      = 200.0
	frictionJerkLimit   = 0.2
	torqueFreezeSpeedMS = 5.0
)

// Torque closes the loop on lateral acceleration rather than steering
// angle and adds a friction term keyed off the desired lateral jerk.
type Torque struct {
	veh      Vehicle
	tuning   config.TorqueTuning
	loop     *Loop
	sat      satTimer
	prevErr  float64
	havePrev bool
}

func NewTorque(veh Vehicle, t config.TorqueTuning) *Torque {
	return &Torque{
		veh:    veh,
		tuning: t,
		loop:   NewFixedLoop(t.Kp, t.Ki, t.Kd, t.Kf),
		sat:    satTimer{limit: veh.SteerLimitTimer},
	}
}

func (q *Torque) Update(active bool, in lateral.Input) (lateral.Candidate, error) {
	v := in.State.SpeedMPS
	desiredRad := q.veh.SteerFromCurvature(in.Targets.Curvature, v)
	cand := lateral.Candidate{DesiredAngleDeg: rad2deg(desiredRad) + in.Aux.AngleOffsetDeg}
	cand.Terms.SteeringAngleDeg = in.State.SteeringAngleDeg

	if !q.veh.engaged(active, v) {
		q.loop.Reset()
		q.havePrev = false
		return cand, nil
	}

	var actualCurvature float64
	if q.tuning.UseSteeringAngle || v < 1 {
		steer := deg2rad(in.State.SteeringAngleDeg - in.Aux.AngleOffsetDeg)
		actualCurvature = q.veh.CurvatureFromSteer(steer, v)
	} else {
		actualCurvature = -in.Aux.YawRate / v
	}

	v2 := v * v
	desiredLatAccel := in.Targets.Curvature * v2
	actualLatAccel := actualCurvature * v2
	desiredJerk := in.Targets.CurvatureRate * v2

	setpoint := desiredLatAccel + lowSpeedFactor*in.Targets.Curvature
	measurement := actualLatAccel + lowSpeedFactor*actualCurvature
	err := deadzone(setpoint-measurement, q.tuning.Deadzone)

	errRate := 0.0
	if q.havePrev {
		errRate = (err - q.prevErr) / lateral.DT
	}
	q.prevErr, q.havePrev = err, true

	friction := lateral.Interp(desiredJerk,
		[]float64{-frictionJerkLimit, frictionJerkLimit},
		[]float64{-q.tuning.Friction, q.tuning.Friction})
	ff := desiredLatAccel - in.Aux.RollRad*gravity + friction

	freeze := v < torqueFreezeSpeedMS || in.Aux.SteerLimited || in.State.SteeringPressed
	out := q.loop.Update(err, errRate, v, ff, false, freeze)

	cand.Torque = out
	cand.Saturated = q.sat.update(out, in)
	cand.Terms.Torque = lateral.TorqueTerms{P: q.loop.P, I: q.loop.I, D: q.loop.D, F: q.loop.F}
	return cand, nil
}

func (q *Torque) Reset() {
	q.loop.Reset()
	q.sat.reset()
	q.prevErr, q.havePrev = 0, false
}

// deadzone shrinks x toward zero by w, returning zero inside the band.
func deadzone(x, w float64) float64 {
	if math.Abs(x) <= w {
		return 0
	}
	return x - math.Copysign(w, x)
}
