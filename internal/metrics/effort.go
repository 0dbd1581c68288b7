package metrics

import (
	"math"

	"github.com/san-kum/latctl/internal/sim"
)

type TorqueEffort struct {
	name    string
	sum     float64
	samples int
}

func NewTorqueEffort() *TorqueEffort {
	return &TorqueEffort{
		name: "torque_effort",
	}
}

func (e *TorqueEffort) Name() string {
	return e.name
}

func (e *TorqueEffort) Observe(c sim.Cycle) {
	if !c.Command.Diagnostics.Active {
		return
	}
	e.sum += math.Abs(c.Command.Torque)
	e.samples++
}

func (e *TorqueEffort) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *TorqueEffort) Reset() {
	e.sum = 0
	e.samples = 0
}

type SaturationRatio struct {
	name      string
	saturated int
	samples   int
}

func NewSaturationRatio() *SaturationRatio {
	return &SaturationRatio{
		name: "saturation_ratio",
	}
}

func (s *SaturationRatio) Name() string {
	return s.name
}

func (s *SaturationRatio) Observe(c sim.Cycle) {
	if !c.Command.Diagnostics.Active {
		return
	}
	s.samples++
	if c.Command.Diagnostics.Saturated {
		s.saturated++
	}
}

func (s *SaturationRatio) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *SaturationRatio) Reset() {
	s.saturated = 0
	s.samples = 0
}
