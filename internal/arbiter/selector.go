package arbiter

import (
	"math"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

// Candidates holds this cycle's candidate per controller id. Entries for ids
// that were not invoked are zero.
type Candidates [lateral.NumControllers]lateral.Candidate

// Decision is the outcome of zone selection for one cycle.
type Decision struct {
	// Selected is the chosen controller, or NoController for a weighted blend.
	Selected lateral.ControllerID
	// Zone is 0, 1 or 2 for the zoned modes.
	Zone     int
	Weighted bool
	// Value is the operating value the decision was made at.
	Value float64
}

// Select picks the controller (or the weighted blend) for one cycle.
//
// Below the first breakpoint method[0] is taken outright. In the two upper
// zones the pair (method[0], method[1]) or (method[1], method[2]) is decided
// by whichever candidate torque lies closer to prevTorque, ties going to the
// lower method.
func Select(mode config.Mode, value, prevTorque float64, cands *Candidates) Decision {
	if mode.Blend == lateral.AngleWeighted {
		return Decision{Selected: lateral.NoController, Weighted: true, Value: value}
	}

	b0, b1 := mode.Breakpoints[0], mode.Breakpoints[1]
	m := mode.Methods

	d := Decision{Value: value}
	switch {
	case !(value >= b0):
		// NaN lands here too.
		d.Zone, d.Selected = 0, m[0]
	case value < b1:
		d.Zone, d.Selected = 1, closer(m[0], m[1], prevTorque, cands)
	default:
		d.Zone, d.Selected = 2, closer(m[1], m[2], prevTorque, cands)
	}
	return d
}

func closer(lo, hi lateral.ControllerID, prev float64, cands *Candidates) lateral.ControllerID {
	dLo := math.Abs(cands[lo].Torque - prev)
	dHi := math.Abs(cands[hi].Torque - prev)
	if dHi < dLo {
		return hi
	}
	return lo
}
