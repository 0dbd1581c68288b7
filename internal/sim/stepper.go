package sim

import (
	"github.com/san-kum/latctl/internal/arbiter"
	"github.com/san-kum/latctl/internal/lateral"
)

// Stepper advances a scenario one cycle at a time. Runner drives it in a
// loop; interactive views drive it from their own clock.
type Stepper struct {
	sc   Scenario
	orch *arbiter.Orchestrator
	i    int
	x    plantState
	last lateral.Command
}

func NewStepper(orch *arbiter.Orchestrator, sc Scenario) (*Stepper, error) {
	if err := Validate(sc); err != nil {
		return nil, err
	}
	s := &Stepper{sc: sc, orch: orch}
	if sc.Plant != nil {
		s.x[0] = sc.SteeringAngle.At(0)
	}
	return s, nil
}

func (s *Stepper) Scenario() Scenario { return s.sc }

func (s *Stepper) Done() bool { return s.i >= s.sc.Steps() }

// Next runs one cycle. It returns false once the scenario is exhausted.
func (s *Stepper) Next() (Cycle, bool) {
	if s.Done() {
		return Cycle{}, false
	}

	t := float64(s.i) * s.sc.Dt
	in := s.sc.input(t, s.last.Torque)
	if s.sc.Plant != nil {
		in.State.SteeringAngleDeg = s.x[0]
		in.State.SteeringRateDeg = s.x[1]
	}
	active := inWindows(s.sc.Active, t)

	cmd := s.orch.Update(active, in)

	c := Cycle{
		Step:             s.i,
		Time:             t,
		Active:           active,
		SpeedMPS:         in.State.SpeedMPS,
		SteeringAngleDeg: in.State.SteeringAngleDeg,
		IsMph:            in.State.IsMph,
		Command:          cmd,
	}

	if s.sc.Plant != nil {
		s.x = s.sc.Plant.step(s.x, cmd.Torque, s.sc.Dt)
	}
	s.last = cmd
	s.i++
	return c, true
}
