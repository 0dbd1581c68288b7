package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/latctl/internal/lateral"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	m, err := cfg.ArbitrationMode()
	if err != nil {
		t.Fatal(err)
	}
	if m.Blend != lateral.SpeedZoned {
		t.Errorf("expected speed zoned, got %v", m.Blend)
	}
	if m.Methods != [3]lateral.ControllerID{lateral.PID, lateral.INDI, lateral.LQR} {
		t.Errorf("unexpected methods %v", m.Methods)
	}
	if m.Breakpoints != [2]float64{5, 15} {
		t.Errorf("unexpected breakpoints %v", m.Breakpoints)
	}
}

func TestParse_Overlay(t *testing.T) {
	data := []byte(`
mode: angle_weighted
angle_weighted:
  breakpoints: [3, 30]
  methods: [pid, 1, torque]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m, _ := cfg.ArbitrationMode()
	if m.Blend != lateral.AngleWeighted {
		t.Errorf("expected angle weighted, got %v", m.Blend)
	}
	if m.Methods[1] != lateral.INDI {
		t.Errorf("numeric id should parse, got %v", m.Methods[1])
	}
	if cfg.Vehicle.SteerRatio != DefaultSteerRatio {
		t.Error("unset fields should keep defaults")
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"equal breakpoints", "speed: {breakpoints: [10, 10]}", lateral.ErrInvalidBreakpoints},
		{"descending breakpoints", "speed: {breakpoints: [15, 5]}", lateral.ErrInvalidBreakpoints},
		{"single breakpoint", "speed: {breakpoints: [5]}", lateral.ErrInvalidBreakpoints},
		{"two methods", "speed: {methods: [pid, lqr]}", lateral.ErrInvalidMethods},
		{"out of range id", "speed: {methods: [pid, 7, lqr]}", lateral.ErrInvalidController},
		{"unknown name", "speed: {methods: [pid, pdi, lqr]}", lateral.ErrInvalidController},
		{"unknown mode", "mode: curvature", lateral.ErrInvalidMode},
		{"weighted duplicates", "mode: angle_weighted\nangle_weighted: {methods: [lqr, lqr, pid]}", lateral.ErrInvalidMethods},
		{"bad lqr shape", "lqr: {a: [1, 2]}", lateral.ErrInvalidTuning},
		{"bad units", "speed_units: furlongs", lateral.ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_UnusedTuningChecked(t *testing.T) {
	data := []byte(`
speed: {methods: [pid, pid, lqr]}
indi: {time_constant_bp: [0, 1], time_constant_v: [1]}
`)
	if _, err := Parse(data); !errors.Is(err, lateral.ErrInvalidTuning) {
		t.Errorf("expected ErrInvalidTuning for unused indi tuning, got %v", err)
	}
}

func TestParse_Suggestion(t *testing.T) {
	_, err := Parse([]byte("speed: {methods: [pid, indy, lqr]}"))
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cerr.Field != "speed.methods[1]" {
		t.Errorf("unexpected field %s", cerr.Field)
	}
	if !strings.Contains(cerr.Hint, `"indi"`) {
		t.Errorf("expected indi suggestion, got %q", cerr.Hint)
	}
}

func TestDisplaySpeedUnits(t *testing.T) {
	cfg := GetPreset("speed-display")
	m, err := cfg.ArbitrationMode()
	if err != nil {
		t.Fatal(err)
	}
	if !m.DisplaySpeedUnits {
		t.Error("expected display speed units")
	}

	cfg.Mode = "angle"
	m, _ = cfg.ArbitrationMode()
	if m.DisplaySpeedUnits {
		t.Error("display units only apply to speed zones")
	}
}

func TestModeUses(t *testing.T) {
	m := Mode{Methods: [3]lateral.ControllerID{lateral.LQR, lateral.Torque, lateral.Torque}}
	if !m.Uses(lateral.Torque) || m.Uses(lateral.PID) {
		t.Error("Uses mismatch")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latctl.yaml")
	cfg := GetPreset("angle")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Mode != "angle" || loaded.Angle.Methods[1] != "torque" {
		t.Errorf("round trip lost fields: %+v", loaded.Angle)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s missing", name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPreset_Independent(t *testing.T) {
	a := GetPreset("speed")
	a.Speed.Methods[0] = "torque"
	b := GetPreset("speed")
	if b.Speed.Methods[0] != "pid" {
		t.Error("presets must not share slices")
	}
}
