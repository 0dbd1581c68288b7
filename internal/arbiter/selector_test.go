package arbiter

import (
	"math"
	"testing"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

func speedMode() config.Mode {
	return config.Mode{
		Blend:       lateral.SpeedZoned,
		Breakpoints: [2]float64{5, 15},
		Methods:     [3]lateral.ControllerID{lateral.PID, lateral.INDI, lateral.LQR},
	}
}

func withTorques(torques map[lateral.ControllerID]float64) *Candidates {
	var c Candidates
	for id, tq := range torques {
		c[id].Torque = tq
	}
	return &c
}

func TestSelectSpeedZoned(t *testing.T) {
	mode := speedMode()
	tests := []struct {
		name     string
		speed    float64
		prev     float64
		torques  map[lateral.ControllerID]float64
		want     lateral.ControllerID
		wantZone int
	}{
		{"low speed picks first method", 3, 0.2, map[lateral.ControllerID]float64{lateral.PID: 0.9, lateral.INDI: 0.2}, lateral.PID, 0},
		{"low zone ignores previous output", 0, -1, map[lateral.ControllerID]float64{lateral.PID: 1, lateral.INDI: -1}, lateral.PID, 0},
		{"middle zone picks closer", 10, 0.2, map[lateral.ControllerID]float64{lateral.PID: 0.1, lateral.INDI: 0.4}, lateral.PID, 1},
		{"middle zone may pick second", 10, 0.35, map[lateral.ControllerID]float64{lateral.PID: 0.1, lateral.INDI: 0.4}, lateral.INDI, 1},
		{"middle zone tie goes low", 10, 0.5, map[lateral.ControllerID]float64{lateral.PID: 0.25, lateral.INDI: 0.75}, lateral.PID, 1},
		{"first breakpoint is inclusive", 5, 0.4, map[lateral.ControllerID]float64{lateral.PID: 0.1, lateral.INDI: 0.4}, lateral.INDI, 1},
		{"upper zone compares second and third", 20, 0.2, map[lateral.ControllerID]float64{lateral.INDI: 0.4, lateral.LQR: 0.25}, lateral.LQR, 2},
		{"upper zone keeps second when closer", 20, 0.2, map[lateral.ControllerID]float64{lateral.INDI: 0.21, lateral.LQR: 0.5}, lateral.INDI, 2},
		{"second breakpoint is inclusive", 15, 0, map[lateral.ControllerID]float64{lateral.PID: 0, lateral.INDI: 0.3, lateral.LQR: 0.1}, lateral.LQR, 2},
		{"non-finite speed falls to first", math.NaN(), 0, map[lateral.ControllerID]float64{lateral.INDI: 0}, lateral.PID, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Select(mode, tt.speed, tt.prev, withTorques(tt.torques))
			if d.Selected != tt.want {
				t.Errorf("expected %s, got %s", tt.want, d.Selected)
			}
			if d.Zone != tt.wantZone {
				t.Errorf("expected zone %d, got %d", tt.wantZone, d.Zone)
			}
			if d.Weighted {
				t.Error("zoned decision marked weighted")
			}
		})
	}
}

func TestSelectDuplicateMethods(t *testing.T) {
	mode := config.Mode{
		Blend:       lateral.AngleZoned,
		Breakpoints: [2]float64{10, 40},
		Methods:     [3]lateral.ControllerID{lateral.LQR, lateral.Torque, lateral.Torque},
	}
	c := withTorques(map[lateral.ControllerID]float64{lateral.LQR: 0.3, lateral.Torque: 0.1})

	if d := Select(mode, 50, 0.3, c); d.Selected != lateral.Torque {
		t.Errorf("expected torque, got %s", d.Selected)
	}
	if d := Select(mode, 20, 0.3, c); d.Selected != lateral.LQR {
		t.Errorf("expected lqr, got %s", d.Selected)
	}
}

func TestSelectWeighted(t *testing.T) {
	mode := config.Mode{
		Blend:       lateral.AngleWeighted,
		Breakpoints: [2]float64{5, 25},
		Methods:     [3]lateral.ControllerID{lateral.LQR, lateral.Torque, lateral.PID},
	}
	d := Select(mode, 12, 0.5, &Candidates{})
	if !d.Weighted || d.Selected != lateral.NoController || d.Value != 12 {
		t.Errorf("unexpected weighted decision %+v", d)
	}
}

// The closeness rule is fed back through the previous output. With fixed
// candidates, once the first method has been output it keeps winning the
// boundary zone, so a value dithering across b0 never chatters.
func TestSelectBoundaryDitherBounded(t *testing.T) {
	mode := speedMode()
	pairs := [][2]float64{{0.1, 0.6}, {0.6, 0.1}, {-0.3, 0.3}, {0.2, 0.2}, {1, -1}}

	for _, p := range pairs {
		c := withTorques(map[lateral.ControllerID]float64{lateral.PID: p[0], lateral.INDI: p[1]})
		prev := p[1]
		last := lateral.NoController
		switches := 0
		for i := 0; i < 2000; i++ {
			speed := 5 + 1.5*math.Sin(float64(i)*0.37)
			d := Select(mode, speed, prev, c)
			if last != lateral.NoController && d.Selected != last {
				switches++
			}
			last = d.Selected
			prev = c[d.Selected].Torque
		}
		if switches > 1 {
			t.Errorf("candidates %v: %d switches under dither", p, switches)
		}
	}
}

// Inside a hysteresis zone the output step is never larger than the change
// of the candidate that was selected on the previous cycle.
func TestSelectStepBoundedBySelectedCandidate(t *testing.T) {
	mode := speedMode()
	var prevCands Candidates
	prevSel := lateral.NoController
	prev := 0.0

	for i := 0; i < 3000; i++ {
		ph := float64(i) * 0.01
		var c Candidates
		c[lateral.PID].Torque = 0.5 * math.Sin(ph)
		c[lateral.INDI].Torque = 0.5 * math.Sin(1.3*ph+1)

		d := Select(mode, 10, prev, &c)
		out := c[d.Selected].Torque
		if prevSel != lateral.NoController {
			step := math.Abs(out - prev)
			own := math.Abs(c[prevSel].Torque - prevCands[prevSel].Torque)
			if step > own+1e-12 {
				t.Fatalf("cycle %d: step %g exceeds selected candidate change %g", i, step, own)
			}
		}
		prevCands, prevSel, prev = c, d.Selected, out
	}
}
