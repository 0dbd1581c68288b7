package sim

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/latctl/internal/lateral"
	"gopkg.in/yaml.v3"
)

var builtins = map[string]func() Scenario{
	"speed-sweep":     speedSweep,
	"angle-sweep":     angleSweep,
	"boundary-dither": boundaryDither,
	"disengage":       disengage,
}

// Builtin returns a named built-in scenario.
func Builtin(name string) (Scenario, error) {
	fn, ok := builtins[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return fn(), nil
}

// LoadScenario reads a YAML scenario file. Dt defaults to the control
// period when omitted.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	sc := Scenario{Dt: lateral.DT}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := Validate(sc); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

func ListBuiltins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Accelerates from standstill to highway speed through both speed
// breakpoints on a gentle curve, steering a simulated column.
func speedSweep() Scenario {
	return Scenario{
		Name:          "speed-sweep",
		Description:   "0 to 30 m/s on a constant curve, closed loop",
		Dt:            lateral.DT,
		Duration:      40,
		Speed:         Ramp(0, 0, 36, 30),
		Curvature:     Const(0.002),
		CurvatureRate: Const(0),
		Active:        []Window{{Start: 0, End: 40}},
		Plant:         DefaultPlant(),
	}
}

// Sweeps the measured steering angle out to 60 degrees and back at
// constant speed.
func angleSweep() Scenario {
	return Scenario{
		Name:          "angle-sweep",
		Description:   "steering angle 0 -> 60 -> 0 deg at 20 m/s",
		Dt:            lateral.DT,
		Duration:      30,
		Speed:         Const(20),
		SteeringAngle: Profile{T: []float64{0, 15, 30}, V: []float64{0, 60, 0}},
		SteeringRate:  Profile{T: []float64{0, 14.99, 15.01, 30}, V: []float64{4, 4, -4, -4}},
		Curvature:     Profile{T: []float64{0, 15, 30}, V: []float64{0, 0.02, 0}},
		Active:        []Window{{Start: 0, End: 30}},
	}
}

// Holds speed around the first speed breakpoint with a sinusoidal wobble so
// the selector sits on the zone boundary.
func boundaryDither() Scenario {
	const (
		center = 5.0
		amp    = 0.6
		period = 1.7
		dur    = 20.0
		knotDt = 0.05
	)
	n := int(dur/knotDt) + 1
	speed := Profile{T: make([]float64, n), V: make([]float64, n)}
	for i := 0; i < n; i++ {
		t := float64(i) * knotDt
		speed.T[i] = t
		speed.V[i] = center + amp*math.Sin(2*math.Pi*t/period)
	}
	return Scenario{
		Name:        "boundary-dither",
		Description: "speed dithering across the 5 m/s breakpoint",
		Dt:          lateral.DT,
		Duration:    dur,
		Speed:       speed,
		Curvature:   Const(0.004),
		Active:      []Window{{Start: 0, End: dur}},
		Plant:       DefaultPlant(),
	}
}

// Drops engagement mid-drive and re-engages, with a driver override in the
// first window.
func disengage() Scenario {
	return Scenario{
		Name:        "disengage",
		Description: "engage, driver override, disengage, re-engage at 15 m/s",
		Dt:          lateral.DT,
		Duration:    12,
		Speed:       Const(15),
		Curvature:   Const(0.003),
		Active:      []Window{{Start: 0, End: 5}, {Start: 7, End: 12}},
		Pressed:     []Window{{Start: 3, End: 3.5}},
		Plant:       DefaultPlant(),
	}
}
