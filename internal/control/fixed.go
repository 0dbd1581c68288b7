package control

import "github.com/san-kum/latctl/internal/lateral"

// Fixed proposes a preset candidate every cycle. It stands in for a real
// law when replaying recorded outputs or forcing a fault.
type Fixed struct {
	Candidate lateral.Candidate
	Err       error

	Calls  int
	Resets int
}

func NewFixed(torque float64) *Fixed {
	return &Fixed{Candidate: lateral.Candidate{Torque: torque}}
}

// Set replaces the proposed torque.
func (f *Fixed) Set(torque float64) {
	f.Candidate.Torque = torque
}

func (f *Fixed) Update(active bool, in lateral.Input) (lateral.Candidate, error) {
	f.Calls++
	if f.Err != nil {
		return lateral.Candidate{}, f.Err
	}
	if !active {
		return lateral.Candidate{DesiredAngleDeg: f.Candidate.DesiredAngleDeg}, nil
	}
	return f.Candidate, nil
}

func (f *Fixed) Reset() {
	f.Resets++
}
