package control

import "github.com/san-kum/latctl/internal/lateral"

// FirstOrderFilter is a discrete low-pass with time constant RC.
type FirstOrderFilter struct {
	X     float64
	alpha float64
}

func NewFirstOrderFilter(x0, rc float64) *FirstOrderFilter {
	f := &FirstOrderFilter{X: x0}
	f.SetTimeConstant(rc)
	return f
}

func (f *FirstOrderFilter) SetTimeConstant(rc float64) {
	f.alpha = lateral.DT / (rc + lateral.DT)
}

func (f *FirstOrderFilter) Update(u float64) float64 {
	f.X = (1-f.alpha)*f.X + f.alpha*u
	return f.X
}
