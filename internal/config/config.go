package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSteerRatio         = 15.3
	DefaultWheelbase          = 2.7
	DefaultUndersteerGradient = 0.002
	DefaultSteerLimitTimer    = 0.8
	DefaultMinSteerSpeed      = 0.3
)

const (
	SpeedUnitsMPS     = "mps"
	SpeedUnitsDisplay = "display"
)

type Config struct {
	Mode       string        `yaml:"mode"`
	SpeedUnits string        `yaml:"speed_units"`
	Speed      ZoneConfig    `yaml:"speed"`
	Angle      ZoneConfig    `yaml:"angle"`
	Weighted   ZoneConfig    `yaml:"angle_weighted"`
	Vehicle    VehicleConfig `yaml:"vehicle"`
	PID        PIDTuning     `yaml:"pid"`
	INDI       INDITuning    `yaml:"indi"`
	LQR        LQRTuning     `yaml:"lqr"`
	Torque     TorqueTuning  `yaml:"torque"`
}

// ZoneConfig is a breakpoint pair and the three controllers assigned around it.
type ZoneConfig struct {
	Breakpoints []float64 `yaml:"breakpoints"`
	Methods     []string  `yaml:"methods"`
}

type VehicleConfig struct {
	SteerRatio         float64 `yaml:"steer_ratio"`
	Wheelbase          float64 `yaml:"wheelbase"`
	UndersteerGradient float64 `yaml:"understeer_gradient"`
	SteerLimitTimer    float64 `yaml:"steer_limit_timer"`
	MinSteerSpeed      float64 `yaml:"min_steer_speed"`
}

type PIDTuning struct {
	KpBP []float64 `yaml:"kp_bp"`
	KpV  []float64 `yaml:"kp_v"`
	KiBP []float64 `yaml:"ki_bp"`
	KiV  []float64 `yaml:"ki_v"`
	KdBP []float64 `yaml:"kd_bp"`
	KdV  []float64 `yaml:"kd_v"`
	Kf   float64   `yaml:"kf"`
}

type INDITuning struct {
	TimeConstantBP          []float64 `yaml:"time_constant_bp"`
	TimeConstantV           []float64 `yaml:"time_constant_v"`
	ActuatorEffectivenessBP []float64 `yaml:"actuator_effectiveness_bp"`
	ActuatorEffectivenessV  []float64 `yaml:"actuator_effectiveness_v"`
	OuterLoopGainBP         []float64 `yaml:"outer_loop_gain_bp"`
	OuterLoopGainV          []float64 `yaml:"outer_loop_gain_v"`
	InnerLoopGainBP         []float64 `yaml:"inner_loop_gain_bp"`
	InnerLoopGainV          []float64 `yaml:"inner_loop_gain_v"`
}

// LQRTuning holds the discrete model (A 2x2 row-major, B 2x1, C 1x2),
// the feedback gain K (1x2) and the observer gain L (2x1).
type LQRTuning struct {
	Scale  float64   `yaml:"scale"`
	Ki     float64   `yaml:"ki"`
	A      []float64 `yaml:"a"`
	B      []float64 `yaml:"b"`
	C      []float64 `yaml:"c"`
	K      []float64 `yaml:"k"`
	L      []float64 `yaml:"l"`
	DcGain float64   `yaml:"dc_gain"`
}

type TorqueTuning struct {
	Kp               float64 `yaml:"kp"`
	Ki               float64 `yaml:"ki"`
	Kd               float64 `yaml:"kd"`
	Kf               float64 `yaml:"kf"`
	Friction         float64 `yaml:"friction"`
	Deadzone         float64 `yaml:"deadzone"`
	UseSteeringAngle bool    `yaml:"use_steering_angle"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode:       "speed",
		SpeedUnits: SpeedUnitsMPS,
		Speed: ZoneConfig{
			Breakpoints: []float64{5, 15},
			Methods:     []string{"pid", "indi", "lqr"},
		},
		Angle: ZoneConfig{
			Breakpoints: []float64{10, 40},
			Methods:     []string{"lqr", "torque", "torque"},
		},
		Weighted: ZoneConfig{
			Breakpoints: []float64{5, 25},
			Methods:     []string{"lqr", "torque", "pid"},
		},
		Vehicle: VehicleConfig{
			SteerRatio:         DefaultSteerRatio,
			Wheelbase:          DefaultWheelbase,
			UndersteerGradient: DefaultUndersteerGradient,
			SteerLimitTimer:    DefaultSteerLimitTimer,
			MinSteerSpeed:      DefaultMinSteerSpeed,
		},
		PID: PIDTuning{
			KpBP: []float64{0, 30},
			KpV:  []float64{0.1, 0.2},
			KiBP: []float64{0, 30},
			KiV:  []float64{0.01, 0.03},
			KdBP: []float64{0},
			KdV:  []float64{0},
			Kf:   0.00006,
		},
		INDI: INDITuning{
			TimeConstantBP:          []float64{0},
			TimeConstantV:           []float64{1.0},
			ActuatorEffectivenessBP: []float64{0},
			ActuatorEffectivenessV:  []float64{2.0},
			OuterLoopGainBP:         []float64{0},
			OuterLoopGainV:          []float64{3.0},
			InnerLoopGainBP:         []float64{0},
			InnerLoopGainV:          []float64{4.0},
		},
		LQR: LQRTuning{
			Scale:  1500.0,
			Ki:     0.05,
			A:      []float64{0, 1, -0.22619643, 1.21822268},
			B:      []float64{-1.92006585e-04, 3.95603032e-05},
			C:      []float64{1, 0},
			K:      []float64{-110.73572306, 451.22718255},
			L:      []float64{0.3233671, 0.3185757},
			DcGain: 0.002237852961363602,
		},
		Torque: TorqueTuning{
			Kp:               0.4,
			Ki:               0.04,
			Kf:               0.4,
			Friction:         0.05,
			UseSteeringAngle: true,
		},
	}
}

// Load reads a YAML config over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
