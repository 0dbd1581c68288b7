package arbiter

import (
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
	"gonum.org/v1/gonum/interp"
)

// Blender resolves a Decision into the final clamped command.
type Blender struct {
	mode  config.Mode
	limit float64

	// ramp maps the operating value to the share of method[1] against
	// method[0]: 0 up to b0, 1 at b1. Nil when the breakpoints cannot be fit.
	ramp *interp.PiecewiseLinear
}

func NewBlender(mode config.Mode) *Blender {
	b := &Blender{mode: mode, limit: lateral.SteerMax}
	var ramp interp.PiecewiseLinear
	if err := ramp.Fit(mode.Breakpoints[:], []float64{0, 1}); err == nil {
		b.ramp = &ramp
	}
	return b
}

// Blend builds the command for an engaged cycle.
func (b *Blender) Blend(d Decision, cands *Candidates) lateral.Command {
	if d.Weighted {
		return b.weighted(d.Value, cands)
	}

	c := cands[d.Selected]
	torque := lateral.Clip(c.Torque, -b.limit, b.limit)
	return lateral.Command{
		Torque:          torque,
		DesiredAngleDeg: c.DesiredAngleDeg,
		Diagnostics: lateral.Diagnostics{
			Active:    true,
			Selected:  d.Selected,
			Output:    torque,
			Saturated: c.Saturated,
			Terms:     c.Terms,
		},
	}
}

func (b *Blender) weighted(value float64, cands *Candidates) lateral.Command {
	m := b.mode.Methods
	torque := b.predict(value, cands[m[0]].Torque, cands[m[1]].Torque, cands[m[2]].Torque)
	angle := b.predict(value, cands[m[0]].DesiredAngleDeg, cands[m[1]].DesiredAngleDeg, cands[m[2]].DesiredAngleDeg)

	torque = lateral.Clip(torque, -b.limit, b.limit)
	return lateral.Command{
		Torque:          torque,
		DesiredAngleDeg: angle,
		Diagnostics: lateral.Diagnostics{
			Active:   true,
			Selected: lateral.NoController,
			Output:   torque,
		},
	}
}

// predict interpolates y0 to y1 across the breakpoints and holds y2 at and
// above the upper one. NaN is treated as below range.
func (b *Blender) predict(x, y0, y1, y2 float64) float64 {
	if x >= b.mode.Breakpoints[1] {
		return y2
	}
	if b.ramp == nil || !(x > b.mode.Breakpoints[0]) {
		return y0
	}
	w := b.ramp.Predict(x)
	return y0 + w*(y1-y0)
}

// Inactive is the command for a disengaged cycle.
func (b *Blender) Inactive() lateral.Command {
	return lateral.Command{
		Diagnostics: lateral.Diagnostics{Selected: lateral.NoController},
	}
}
