package control

import (
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
	"gonum.org/v1/gonum/mat"
)

// Steady-state Kalman gain for the [angle, rate, accel] observer.
var indiObserverGain = []float64{
	7.30262179e-01, 2.07003658e-04,
	7.29394177e+00, 1.39159419e-02,
	1.71022442e+01, 3.38495381e-02,
}

// INDI inverts the steering actuator dynamics incrementally: it estimates
// angle, rate and acceleration with an observer and commands the change in
// torque that closes the acceleration error.
type INDI struct {
	veh    Vehicle
	tuning config.INDITuning

	ak *mat.Dense
	k  *mat.Dense
	x  *mat.VecDense
	y  *mat.VecDense

	filter *FirstOrderFilter
	sat    satTimer
}

func NewINDI(veh Vehicle, t config.INDITuning) *INDI {
	dt := lateral.DT
	a := mat.NewDense(3, 3, []float64{
		1, dt, 0,
		0, 1, dt,
		0, 0, 1,
	})
	c := mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 1, 0,
	})
	k := mat.NewDense(3, 2, append([]float64(nil), indiObserverGain...))

	var kc, ak mat.Dense
	kc.Mul(k, c)
	ak.Sub(a, &kc)

	n := &INDI{
		veh:    veh,
		tuning: t,
		ak:     &ak,
		k:      k,
		x:      mat.NewVecDense(3, nil),
		y:      mat.NewVecDense(2, nil),
		sat:    satTimer{limit: veh.SteerLimitTimer},
	}
	n.filter = NewFirstOrderFilter(0, n.timeConstant(0))
	return n
}

func (n *INDI) timeConstant(v float64) float64 {
	return lateral.Interp(v, n.tuning.TimeConstantBP, n.tuning.TimeConstantV)
}

func (n *INDI) Update(active bool, in lateral.Input) (lateral.Candidate, error) {
	v := in.State.SpeedMPS

	n.y.SetVec(0, deg2rad(in.State.SteeringAngleDeg))
	n.y.SetVec(1, deg2rad(in.State.SteeringRateDeg))
	var next, corr mat.VecDense
	next.MulVec(n.ak, n.x)
	corr.MulVec(n.k, n.y)
	n.x.AddVec(&next, &corr)

	steersDes := n.veh.SteerFromCurvature(in.Targets.Curvature, v) + deg2rad(in.Aux.AngleOffsetDeg)
	rateDes := n.veh.SteerFromCurvature(in.Targets.CurvatureRate, v)

	cand := lateral.Candidate{DesiredAngleDeg: rad2deg(steersDes)}
	cand.Terms.SteeringAngleDeg = rad2deg(n.x.AtVec(0))

	if !n.veh.engaged(active, v) {
		n.filter.X = 0
		return cand, nil
	}

	n.filter.SetTimeConstant(n.timeConstant(v))
	n.filter.Update(in.Aux.LastTorque)

	outer := lateral.Interp(v, n.tuning.OuterLoopGainBP, n.tuning.OuterLoopGainV)
	inner := lateral.Interp(v, n.tuning.InnerLoopGainBP, n.tuning.InnerLoopGainV)
	g := lateral.Interp(v, n.tuning.ActuatorEffectivenessBP, n.tuning.ActuatorEffectivenessV)

	rateSP := outer*(steersDes-n.x.AtVec(0)) + rateDes
	accelSP := inner * (rateSP - n.x.AtVec(1))
	accelErr := accelSP - n.x.AtVec(2)

	delta := 0.0
	if g != 0 {
		delta = accelErr / g
	}
	// Driver override may only wind the command down.
	if in.State.SteeringPressed && delta*in.Aux.LastTorque > 0 {
		delta = 0
	}

	out := lateral.Clip(n.filter.X+delta, -lateral.SteerMax, lateral.SteerMax)

	cand.Torque = out
	cand.Saturated = n.sat.update(out, in)
	cand.Terms.INDI = lateral.INDITerms{
		RateSetPoint:  rateSP,
		AccelSetPoint: accelSP,
		AccelError:    accelErr,
		DelayedOutput: n.filter.X,
		Delta:         delta,
	}
	return cand, nil
}

// Reset zeroes the observer, the actuator filter and the saturation timer.
func (n *INDI) Reset() {
	n.x.Zero()
	n.filter.X = 0
	n.sat.reset()
}
