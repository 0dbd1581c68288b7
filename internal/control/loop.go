package control

import "github.com/san-kum/latctl/internal/lateral"

const unwindRate = 0.3 * lateral.DT

// Loop is a PID loop with speed-scheduled gains, feedforward and
// conditional integration for anti-windup.
type Loop struct {
	KpBP, KpV []float64
	KiBP, KiV []float64
	KdBP, KdV []float64
	Kf        float64

	PosLimit float64
	NegLimit float64

	P, I, D, F float64
}

func NewLoop(kpBP, kpV, kiBP, kiV, kdBP, kdV []float64, kf float64) *Loop {
	return &Loop{
		KpBP: kpBP, KpV: kpV,
		KiBP: kiBP, KiV: kiV,
		KdBP: kdBP, KdV: kdV,
		Kf:       kf,
		PosLimit: lateral.SteerMax,
		NegLimit: -lateral.SteerMax,
	}
}

// NewFixedLoop builds a loop whose gains do not vary with speed.
func NewFixedLoop(kp, ki, kd, kf float64) *Loop {
	return NewLoop([]float64{0}, []float64{kp}, []float64{0}, []float64{ki}, []float64{0}, []float64{kd}, kf)
}

// Update advances the loop one tick. While override is set the integrator
// unwinds toward zero; freeze holds it.
func (l *Loop) Update(err, errRate, speed, feedforward float64, override, freeze bool) float64 {
	kp := lateral.Interp(speed, l.KpBP, l.KpV)
	ki := lateral.Interp(speed, l.KiBP, l.KiV)
	kd := lateral.Interp(speed, l.KdBP, l.KdV)

	l.P = err * kp
	l.F = feedforward * l.Kf
	l.D = errRate * kd

	if override {
		l.I -= unwindRate * lateral.Sign(l.I)
	} else {
		i := l.I + err*ki*lateral.DT
		control := l.P + i + l.D + l.F
		windsUp := (err >= 0 && (control <= l.PosLimit || i < 0)) ||
			(err <= 0 && (control >= l.NegLimit || i > 0))
		if windsUp && !freeze {
			l.I = i
		}
	}

	return lateral.Clip(l.P+l.I+l.D+l.F, l.NegLimit, l.PosLimit)
}

// Reset clears integral state and the last terms.
func (l *Loop) Reset() {
	l.P, l.I, l.D, l.F = 0, 0, 0, 0
}
