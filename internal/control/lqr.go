package control

import (
	"math"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
	"gonum.org/v1/gonum/mat"
)

// LQR holds the steering angle with state feedback on an observed 2-state
// actuator model plus an integral term.
type LQR struct {
	veh    Vehicle
	scale  float64
	ki     float64
	dcGain float64

	a, b, c, k, l *mat.Dense
	xHat          *mat.VecDense

	i   float64
	sat satTimer
}

func NewLQR(veh Vehicle, t config.LQRTuning) *LQR {
	return &LQR{
		veh:    veh,
		scale:  t.Scale,
		ki:     t.Ki,
		dcGain: t.DcGain,
		a:      mat.NewDense(2, 2, append([]float64(nil), t.A...)),
		b:      mat.NewDense(2, 1, append([]float64(nil), t.B...)),
		c:      mat.NewDense(1, 2, append([]float64(nil), t.C...)),
		k:      mat.NewDense(1, 2, append([]float64(nil), t.K...)),
		l:      mat.NewDense(2, 1, append([]float64(nil), t.L...)),
		xHat:   mat.NewVecDense(2, nil),
		sat:    satTimer{limit: veh.SteerLimitTimer},
	}
}

func (q *LQR) Update(active bool, in lateral.Input) (lateral.Candidate, error) {
	v := in.State.SpeedMPS
	torqueScale := math.Pow(0.45+v/60.0, 2)

	angleNoOffset := in.State.SteeringAngleDeg - in.Aux.AngleOffsetAverageDeg
	desired := rad2deg(q.veh.SteerFromCurvature(in.Targets.Curvature, v))
	desired += in.Aux.AngleOffsetDeg - in.Aux.AngleOffsetAverageDeg

	angleK := mat.Dot(q.c.RowView(0), q.xHat)
	e := angleNoOffset - angleK

	var ax, bu, le mat.VecDense
	ax.MulVec(q.a, q.xHat)
	bu.ScaleVec(in.State.SteeringTorqueEPS/torqueScale, q.b.ColView(0))
	le.ScaleVec(e, q.l.ColView(0))
	q.xHat.AddVec(&ax, &bu)
	q.xHat.AddVec(q.xHat, &le)

	cand := lateral.Candidate{DesiredAngleDeg: desired}

	if !q.veh.engaged(active, v) {
		q.i = 0
		cand.Terms.SteeringAngleDeg = angleK
		return cand, nil
	}

	uLQR := desired/q.dcGain - mat.Dot(q.k.RowView(0), q.xHat)
	lqrOutput := torqueScale * uLQR / q.scale

	if in.State.SteeringPressed {
		q.i -= unwindRate * lateral.Sign(q.i)
	} else {
		err := desired - angleK
		i := q.i + q.ki*lateral.DT*err
		control := lqrOutput + i
		if (err >= 0 && (control <= lateral.SteerMax || i < 0)) ||
			(err <= 0 && (control >= -lateral.SteerMax || i > 0)) {
			q.i = i
		}
	}

	out := lateral.Clip(lqrOutput+q.i, -lateral.SteerMax, lateral.SteerMax)

	cand.Torque = out
	cand.Saturated = q.sat.update(out, in)
	cand.Terms.SteeringAngleDeg = angleK
	cand.Terms.LQR = lateral.LQRTerms{I: q.i, Output: lqrOutput}
	return cand, nil
}

// Reset clears the integrator, the observer estimate and the saturation timer.
func (q *LQR) Reset() {
	q.i = 0
	q.xHat.Zero()
	q.sat.reset()
}
