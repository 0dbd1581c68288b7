package config

import "sort"

// Preset is a named arbitration layout applied over the default tunings.
type Preset struct {
	Description string
	Mode        string
	Zone        ZoneConfig
}

var Presets = map[string]Preset{
	"speed": {
		Description: "pid in town, indi through the blend band, lqr on the highway",
		Mode:        "speed",
		Zone:        ZoneConfig{Breakpoints: []float64{5, 15}, Methods: []string{"pid", "indi", "lqr"}},
	},
	"speed-display": {
		Description: "speed zones in dashboard units (30/60 kph or mph)",
		Mode:        "speed",
		Zone:        ZoneConfig{Breakpoints: []float64{30, 60}, Methods: []string{"torque", "lqr", "lqr"}},
	},
	"angle": {
		Description: "lqr near center, torque in curves",
		Mode:        "angle",
		Zone:        ZoneConfig{Breakpoints: []float64{10, 40}, Methods: []string{"lqr", "torque", "torque"}},
	},
	"weighted": {
		Description: "continuous lqr -> torque -> pid blend over steering angle",
		Mode:        "angle_weighted",
		Zone:        ZoneConfig{Breakpoints: []float64{5, 25}, Methods: []string{"lqr", "torque", "pid"}},
	},
	"torque": {
		Description: "torque controller in every zone",
		Mode:        "speed",
		Zone:        ZoneConfig{Breakpoints: []float64{5, 15}, Methods: []string{"torque", "torque", "torque"}},
	},
}

// GetPreset returns a fresh default config with the preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Mode = p.Mode
	zone := ZoneConfig{
		Breakpoints: append([]float64(nil), p.Zone.Breakpoints...),
		Methods:     append([]string(nil), p.Zone.Methods...),
	}
	switch p.Mode {
	case "speed":
		cfg.Speed = zone
	case "angle":
		cfg.Angle = zone
	case "angle_weighted":
		cfg.Weighted = zone
	}
	if name == "speed-display" {
		cfg.SpeedUnits = SpeedUnitsDisplay
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
