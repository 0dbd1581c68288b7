package metrics

import (
	"math"

	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/sim"
)

// SelectionSwitches counts changes of the selected controller between
// consecutive engaged cycles. Re-engagement does not count as a switch.
type SelectionSwitches struct {
	name     string
	last     lateral.ControllerID
	switches int
}

func NewSelectionSwitches() *SelectionSwitches {
	return &SelectionSwitches{
		name: "selection_switches",
		last: lateral.NoController,
	}
}

func (s *SelectionSwitches) Name() string {
	return s.name
}

func (s *SelectionSwitches) Observe(c sim.Cycle) {
	d := c.Command.Diagnostics
	if !d.Active {
		s.last = lateral.NoController
		return
	}
	if s.last != lateral.NoController && d.Selected != s.last {
		s.switches++
	}
	s.last = d.Selected
}

func (s *SelectionSwitches) Value() float64 {
	return float64(s.switches)
}

func (s *SelectionSwitches) Reset() {
	s.last = lateral.NoController
	s.switches = 0
}

// MaxTorqueStep is the largest absolute change of the output torque between
// consecutive cycles, disengagement edges included.
type MaxTorqueStep struct {
	name    string
	prev    float64
	started bool
	max     float64
}

func NewMaxTorqueStep() *MaxTorqueStep {
	return &MaxTorqueStep{
		name: "max_torque_step",
	}
}

func (m *MaxTorqueStep) Name() string {
	return m.name
}

func (m *MaxTorqueStep) Observe(c sim.Cycle) {
	tq := c.Command.Torque
	if m.started {
		m.max = math.Max(m.max, math.Abs(tq-m.prev))
	}
	m.prev, m.started = tq, true
}

func (m *MaxTorqueStep) Value() float64 {
	return m.max
}

func (m *MaxTorqueStep) Reset() {
	m.prev, m.started, m.max = 0, false, 0
}

type Engagements struct {
	name   string
	active bool
	count  int
}

func NewEngagements() *Engagements {
	return &Engagements{
		name: "engagements",
	}
}

func (e *Engagements) Name() string {
	return e.name
}

func (e *Engagements) Observe(c sim.Cycle) {
	active := c.Command.Diagnostics.Active
	if active && !e.active {
		e.count++
	}
	e.active = active
}

func (e *Engagements) Value() float64 {
	return float64(e.count)
}

func (e *Engagements) Reset() {
	e.active = false
	e.count = 0
}
