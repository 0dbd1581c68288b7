package sim

import (
	"errors"

	"github.com/san-kum/latctl/internal/lateral"
)

var (
	ErrInvalidScenario = errors.New("sim: invalid scenario")
	ErrUnknownScenario = errors.New("sim: unknown scenario")
)

// Profile is a piecewise-linear signal over time, held flat outside its
// knots. A single knot is a constant; no knots is zero.
type Profile struct {
	T []float64 `json:"t" yaml:"t"`
	V []float64 `json:"v" yaml:"v"`
}

func Const(v float64) Profile {
	return Profile{T: []float64{0}, V: []float64{v}}
}

func Ramp(t0, v0, t1, v1 float64) Profile {
	return Profile{T: []float64{t0, t1}, V: []float64{v0, v1}}
}

func (p Profile) At(t float64) float64 {
	return lateral.Interp(t, p.T, p.V)
}

func (p Profile) valid() bool {
	if len(p.T) != len(p.V) {
		return false
	}
	for i := 1; i < len(p.T); i++ {
		if p.T[i] <= p.T[i-1] {
			return false
		}
	}
	return true
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

func inWindows(ws []Window, t float64) bool {
	for _, w := range ws {
		if t >= w.Start && t < w.End {
			return true
		}
	}
	return false
}

// Scenario scripts the inputs of a replay run.
type Scenario struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Dt          float64 `json:"dt" yaml:"dt"`
	Duration    float64 `json:"duration" yaml:"duration"`

	Speed         Profile `json:"speed" yaml:"speed"`
	SteeringAngle Profile `json:"steering_angle" yaml:"steering_angle"`
	SteeringRate  Profile `json:"steering_rate" yaml:"steering_rate"`
	Curvature     Profile `json:"curvature" yaml:"curvature"`
	CurvatureRate Profile `json:"curvature_rate" yaml:"curvature_rate"`
	Roll          Profile `json:"roll" yaml:"roll"`
	YawRate       Profile `json:"yaw_rate" yaml:"yaw_rate"`
	EPSTorque     Profile `json:"eps_torque" yaml:"eps_torque"`

	Active  []Window `json:"active" yaml:"active"`
	Pressed []Window `json:"pressed" yaml:"pressed"`
	IsMph   bool     `json:"is_mph" yaml:"is_mph"`

	// Plant, when set, integrates the steering angle from the commanded
	// torque instead of following the SteeringAngle profile.
	Plant *Plant `json:"plant,omitempty" yaml:"plant,omitempty"`
}

// Steps is the number of cycles the scenario covers.
func (s Scenario) Steps() int {
	return int(s.Duration/s.Dt + 0.5)
}

// Cycle records one arbitration cycle.
type Cycle struct {
	Step             int             `json:"step"`
	Time             float64         `json:"time"`
	Active           bool            `json:"active"`
	SpeedMPS         float64         `json:"speed_mps"`
	SteeringAngleDeg float64         `json:"steering_angle_deg"`
	IsMph            bool            `json:"is_mph"`
	Command          lateral.Command `json:"command"`
}

type Metric interface {
	Name() string
	Observe(c Cycle)
	Value() float64
	Reset()
}

type Observer interface {
	OnCycle(c Cycle)
}

type Result struct {
	Scenario string             `json:"scenario"`
	Cycles   []Cycle            `json:"-"`
	Metrics  map[string]float64 `json:"metrics"`
	Steps    int                `json:"steps"`
	// PublishErrors counts cycles whose command could not be published.
	PublishErrors int `json:"publish_errors"`
}
