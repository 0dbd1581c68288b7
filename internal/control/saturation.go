package control

import (
	"math"

	"github.com/san-kum/latctl/internal/lateral"
)

const (
	satMinSpeed = 10.0
	satEpsilon  = 1e-3
)

// satTimer flags a law as saturated once its output has sat at the limit
// for SteerLimitTimer seconds while the driver is hands-off.
type satTimer struct {
	count float64
	limit float64
}

func (s *satTimer) update(output float64, in lateral.Input) bool {
	atLimit := lateral.SteerMax-math.Abs(output) < satEpsilon
	if atLimit && in.State.SpeedMPS > satMinSpeed && !in.Aux.SteerLimited && !in.State.SteeringPressed {
		s.count += lateral.DT
	} else {
		s.count -= lateral.DT
	}
	s.count = lateral.Clip(s.count, 0, s.limit)
	return s.count > s.limit-satEpsilon
}

func (s *satTimer) reset() {
	s.count = 0
}
