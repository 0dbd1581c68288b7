package config

import (
	"fmt"
	"math"

	"github.com/san-kum/latctl/internal/lateral"
)

// Validate rejects any configuration the arbiter cannot run with. All four
// tunings are checked, selected by the mode or not.
func (c *Config) Validate() error {
	if _, err := c.ArbitrationMode(); err != nil {
		return err
	}

	v := c.Vehicle
	if v.SteerRatio <= 0 || v.Wheelbase <= 0 {
		return &ConfigError{Field: "vehicle", Value: fmt.Sprintf("steer_ratio=%g wheelbase=%g", v.SteerRatio, v.Wheelbase), Wrapped: lateral.ErrInvalidTuning}
	}
	if v.SteerLimitTimer <= 0 {
		return &ConfigError{Field: "vehicle.steer_limit_timer", Value: v.SteerLimitTimer, Wrapped: lateral.ErrInvalidTuning}
	}
	if v.MinSteerSpeed < 0 {
		return &ConfigError{Field: "vehicle.min_steer_speed", Value: v.MinSteerSpeed, Wrapped: lateral.ErrInvalidTuning}
	}

	for id := lateral.PID; id <= lateral.Torque; id++ {
		if err := c.validateTuning(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateTuning(id lateral.ControllerID) error {
	switch id {
	case lateral.PID:
		p := c.PID
		return firstErr(
			checkSchedule("pid.kp", p.KpBP, p.KpV),
			checkSchedule("pid.ki", p.KiBP, p.KiV),
			checkSchedule("pid.kd", p.KdBP, p.KdV),
		)
	case lateral.INDI:
		n := c.INDI
		if err := firstErr(
			checkSchedule("indi.time_constant", n.TimeConstantBP, n.TimeConstantV),
			checkSchedule("indi.actuator_effectiveness", n.ActuatorEffectivenessBP, n.ActuatorEffectivenessV),
			checkSchedule("indi.outer_loop_gain", n.OuterLoopGainBP, n.OuterLoopGainV),
			checkSchedule("indi.inner_loop_gain", n.InnerLoopGainBP, n.InnerLoopGainV),
		); err != nil {
			return err
		}
		for _, g := range n.ActuatorEffectivenessV {
			if g <= 0 {
				return &ConfigError{Field: "indi.actuator_effectiveness_v", Value: n.ActuatorEffectivenessV, Wrapped: lateral.ErrInvalidTuning}
			}
		}
		for _, rc := range n.TimeConstantV {
			if rc < 0 {
				return &ConfigError{Field: "indi.time_constant_v", Value: n.TimeConstantV, Wrapped: lateral.ErrInvalidTuning}
			}
		}
	case lateral.LQR:
		l := c.LQR
		if len(l.A) != 4 || len(l.B) != 2 || len(l.C) != 2 || len(l.K) != 2 || len(l.L) != 2 {
			return &ConfigError{Field: "lqr", Value: "matrix shapes", Hint: "a has 4 entries, b c k l have 2", Wrapped: lateral.ErrInvalidTuning}
		}
		if l.DcGain == 0 || l.Scale == 0 {
			return &ConfigError{Field: "lqr", Value: fmt.Sprintf("dc_gain=%g scale=%g", l.DcGain, l.Scale), Wrapped: lateral.ErrInvalidTuning}
		}
	case lateral.Torque:
		if c.Torque.Deadzone < 0 || c.Torque.Friction < 0 {
			return &ConfigError{Field: "torque", Value: fmt.Sprintf("deadzone=%g friction=%g", c.Torque.Deadzone, c.Torque.Friction), Wrapped: lateral.ErrInvalidTuning}
		}
	}
	return nil
}

func checkSchedule(field string, bp, v []float64) error {
	if len(bp) == 0 || len(bp) != len(v) {
		return &ConfigError{Field: field, Value: fmt.Sprintf("bp=%v v=%v", bp, v), Wrapped: lateral.ErrInvalidTuning}
	}
	for i := range bp {
		if math.IsNaN(bp[i]) || math.IsNaN(v[i]) {
			return &ConfigError{Field: field, Value: fmt.Sprintf("bp=%v v=%v", bp, v), Wrapped: lateral.ErrInvalidTuning}
		}
		if i > 0 && bp[i] <= bp[i-1] {
			return &ConfigError{Field: field + "_bp", Value: bp, Hint: "breakpoints must ascend", Wrapped: lateral.ErrInvalidTuning}
		}
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
