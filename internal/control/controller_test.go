package control

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/lateral"
)

func testBank(t *testing.T) Bank {
	t.Helper()
	b, err := NewBank(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewBank: %v", err)
	}
	return b
}

func cruise(speed, curvature float64) lateral.Input {
	return lateral.Input{
		State:   lateral.VehicleState{SpeedMPS: speed},
		Targets: lateral.Targets{Curvature: curvature, CurvatureRate: curvature / 10},
	}
}

func TestInactiveOutputsZero(t *testing.T) {
	b := testBank(t)
	in := cruise(20, 0.01)
	for id, c := range b {
		cand, err := c.Update(false, in)
		if err != nil {
			t.Fatalf("%s: %v", lateral.ControllerID(id), err)
		}
		if cand.Torque != 0 {
			t.Errorf("%s: expected zero torque when inactive, got %f", lateral.ControllerID(id), cand.Torque)
		}
		if cand.DesiredAngleDeg == 0 {
			t.Errorf("%s: expected desired angle to be reported", lateral.ControllerID(id))
		}
	}
}

func TestBelowMinSteerSpeed(t *testing.T) {
	b := testBank(t)
	in := cruise(0.1, 0.01)
	for id, c := range b {
		cand, _ := c.Update(true, in)
		if cand.Torque != 0 {
			t.Errorf("%s: expected zero torque below min steer speed, got %f", lateral.ControllerID(id), cand.Torque)
		}
	}
}

func TestOutputBounded(t *testing.T) {
	b := testBank(t)
	inputs := []lateral.Input{
		cruise(30, 0.5),
		cruise(30, -0.5),
		cruise(2, 0.2),
		{State: lateral.VehicleState{SpeedMPS: 25, SteeringAngleDeg: -400, SteeringRateDeg: 900}},
	}
	for id, c := range b {
		for _, in := range inputs {
			c.Reset()
			for i := 0; i < 300; i++ {
				cand, err := c.Update(true, in)
				if err != nil {
					t.Fatal(err)
				}
				if math.Abs(cand.Torque) > lateral.SteerMax || math.IsNaN(cand.Torque) {
					t.Fatalf("%s: torque %f out of range", lateral.ControllerID(id), cand.Torque)
				}
				in.Aux.LastTorque = cand.Torque
			}
		}
	}
}

func run(c lateral.Controller, n int) []float64 {
	in := cruise(18, 0.004)
	out := make([]float64, n)
	for i := range out {
		in.State.SteeringAngleDeg = float64(i) * 0.05
		in.State.SteeringRateDeg = 5
		cand, _ := c.Update(true, in)
		out[i] = cand.Torque
		in.Aux.LastTorque = cand.Torque
	}
	return out
}

func TestResetRestoresInitialBehavior(t *testing.T) {
	for id, c := range testBank(t) {
		first := run(c, 120)

		c.Reset()
		c.Reset()
		second := run(c, 120)

		for i := range first {
			if first[i] != second[i] {
				t.Errorf("%s: cycle %d differs after reset: %f vs %f", lateral.ControllerID(id), i, first[i], second[i])
				break
			}
		}
	}
}

func TestPIDTracksDesiredAngle(t *testing.T) {
	p := NewPID(VehicleFromConfig(config.DefaultConfig().Vehicle), config.DefaultConfig().PID)

	cand, _ := p.Update(true, cruise(10, 0.01))
	if cand.Torque <= 0 {
		t.Errorf("expected positive torque toward a left curve, got %f", cand.Torque)
	}
	if cand.Terms.PID.P <= 0 {
		t.Errorf("expected positive proportional term, got %f", cand.Terms.PID.P)
	}

	cand, _ = p.Update(true, cruise(10, -0.01))
	if cand.Torque >= 0 {
		t.Errorf("expected negative torque toward a right curve, got %f", cand.Torque)
	}
}

func TestPIDSaturation(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewPID(VehicleFromConfig(cfg.Vehicle), cfg.PID)
	in := cruise(20, 0.1)

	var cand lateral.Candidate
	for i := 0; i < 100; i++ {
		cand, _ = p.Update(true, in)
	}
	if cand.Torque != lateral.SteerMax {
		t.Fatalf("expected output pinned at limit, got %f", cand.Torque)
	}
	if !cand.Saturated {
		t.Error("expected saturation after a second at the limit")
	}

	in.State.SteeringPressed = true
	p.Reset()
	for i := 0; i < 100; i++ {
		cand, _ = p.Update(true, in)
	}
	if cand.Saturated {
		t.Error("saturation should not accrue while the driver steers")
	}
}

func TestLQRZeroAtRest(t *testing.T) {
	cfg := config.DefaultConfig()
	q := NewLQR(VehicleFromConfig(cfg.Vehicle), cfg.LQR)
	for i := 0; i < 50; i++ {
		cand, _ := q.Update(true, cruise(15, 0))
		if cand.Torque != 0 {
			t.Fatalf("cycle %d: expected zero torque at rest, got %f", i, cand.Torque)
		}
	}
}

func TestINDIObserverFollowsAngle(t *testing.T) {
	cfg := config.DefaultConfig()
	n := NewINDI(VehicleFromConfig(cfg.Vehicle), cfg.INDI)
	in := cruise(15, 0)
	in.State.SteeringAngleDeg = 10

	var cand lateral.Candidate
	for i := 0; i < 200; i++ {
		cand, _ = n.Update(true, in)
	}
	if math.Abs(cand.Terms.SteeringAngleDeg-10) > 1 {
		t.Errorf("expected observer to converge near 10 deg, got %f", cand.Terms.SteeringAngleDeg)
	}
	if cand.Torque >= 0 {
		t.Errorf("expected torque back toward center, got %f", cand.Torque)
	}
}

func TestTorqueFreezesIntegratorAtLowSpeed(t *testing.T) {
	cfg := config.DefaultConfig()
	q := NewTorque(VehicleFromConfig(cfg.Vehicle), cfg.Torque)
	for i := 0; i < 100; i++ {
		cand, _ := q.Update(true, cruise(3, 0.02))
		if cand.Terms.Torque.I != 0 {
			t.Fatalf("expected frozen integrator below 5 m/s, got %f", cand.Terms.Torque.I)
		}
	}

	var cand lateral.Candidate
	for i := 0; i < 10; i++ {
		cand, _ = q.Update(true, cruise(15, 0.0005))
	}
	if cand.Terms.Torque.I <= 0 {
		t.Errorf("expected integrator to accumulate at speed, got %f", cand.Terms.Torque.I)
	}
}

func TestDeadzone(t *testing.T) {
	tests := []struct {
		x, w, want float64
	}{
		{0.05, 0.1, 0},
		{-0.05, 0.1, 0},
		{0.3, 0.1, 0.2},
		{-0.3, 0.1, -0.2},
		{0.3, 0, 0.3},
	}
	for _, tt := range tests {
		if got := deadzone(tt.x, tt.w); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("deadzone(%v, %v): expected %v, got %v", tt.x, tt.w, tt.want, got)
		}
	}
}

func TestLoopUnwindsOnOverride(t *testing.T) {
	l := NewFixedLoop(0.1, 1.0, 0, 0)
	for i := 0; i < 50; i++ {
		l.Update(1, 0, 10, 0, false, false)
	}
	built := l.I
	if built <= 0 {
		t.Fatalf("expected integrator to build, got %f", built)
	}
	l.Update(1, 0, 10, 0, true, false)
	if l.I >= built {
		t.Errorf("expected integrator to unwind under override: %f -> %f", built, l.I)
	}

	frozen := l.I
	l.Update(1, 0, 10, 0, false, true)
	if l.I != frozen {
		t.Errorf("expected frozen integrator, got %f -> %f", frozen, l.I)
	}
}

func TestCurvatureRoundTrip(t *testing.T) {
	veh := VehicleFromConfig(config.DefaultConfig().Vehicle)
	for _, v := range []float64{0, 5, 30} {
		steer := veh.SteerFromCurvature(0.02, v)
		if got := veh.CurvatureFromSteer(steer, v); math.Abs(got-0.02) > 1e-12 {
			t.Errorf("v=%v: expected 0.02, got %v", v, got)
		}
	}
	if got := (Vehicle{}).CurvatureFromSteer(1, 10); got != 0 {
		t.Errorf("expected zero for degenerate geometry, got %v", got)
	}
}

func TestFirstOrderFilter(t *testing.T) {
	f := NewFirstOrderFilter(0, 0.1)
	for i := 0; i < 200; i++ {
		f.Update(1)
	}
	if math.Abs(f.X-1) > 1e-3 {
		t.Errorf("expected filter to settle at 1, got %f", f.X)
	}
}

func TestBank(t *testing.T) {
	b := testBank(t)
	for id := lateral.ControllerID(0); id < lateral.NumControllers; id++ {
		if _, err := b.Get(id); err != nil {
			t.Errorf("%s: %v", id, err)
		}
	}
	if _, err := b.Get(lateral.NoController); !errors.Is(err, lateral.ErrInvalidController) {
		t.Errorf("expected ErrInvalidController, got %v", err)
	}

	var empty Bank
	if _, err := empty.Get(lateral.LQR); !errors.Is(err, lateral.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}

	fixed := NewFixed(0.2)
	empty[lateral.PID] = fixed
	empty.ResetAll()
	empty.ResetAll()
	if fixed.Resets != 2 {
		t.Errorf("expected 2 resets, got %d", fixed.Resets)
	}
}

func TestNewBankRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.INDI.ActuatorEffectivenessV = []float64{0}
	if _, err := NewBank(cfg); !errors.Is(err, lateral.ErrInvalidTuning) {
		t.Errorf("expected ErrInvalidTuning, got %v", err)
	}
}
