package config

import (
	"fmt"
	"math"

	"github.com/agnivade/levenshtein"
	"github.com/san-kum/latctl/internal/lateral"
)

// Mode is the validated, cycle-invariant arbitration setup.
type Mode struct {
	Blend       lateral.BlendMode
	Breakpoints [2]float64
	Methods     [3]lateral.ControllerID

	// DisplaySpeedUnits marks speed breakpoints given in kph, or mph when
	// the cycle reports IsMph, rather than m/s.
	DisplaySpeedUnits bool
}

// Uses reports whether id appears in the method triple.
func (m Mode) Uses(id lateral.ControllerID) bool {
	for _, method := range m.Methods {
		if method == id {
			return true
		}
	}
	return false
}

// ArbitrationMode validates the active blend mode and returns its zone setup.
func (c *Config) ArbitrationMode() (Mode, error) {
	blend, err := lateral.ParseBlendMode(c.Mode)
	if err != nil {
		return Mode{}, &ConfigError{Field: "mode", Value: c.Mode, Wrapped: lateral.ErrInvalidMode}
	}

	var zone ZoneConfig
	var field string
	switch blend {
	case lateral.SpeedZoned:
		zone, field = c.Speed, "speed"
	case lateral.AngleZoned:
		zone, field = c.Angle, "angle"
	case lateral.AngleWeighted:
		zone, field = c.Weighted, "angle_weighted"
	}

	m := Mode{Blend: blend}

	if err := checkBreakpoints(field, zone.Breakpoints); err != nil {
		return Mode{}, err
	}
	copy(m.Breakpoints[:], zone.Breakpoints)

	if len(zone.Methods) != 3 {
		return Mode{}, &ConfigError{Field: field + ".methods", Value: zone.Methods, Wrapped: lateral.ErrInvalidMethods}
	}
	for i, name := range zone.Methods {
		id, err := lateral.ParseControllerID(name)
		if err != nil {
			return Mode{}, &ConfigError{
				Field:   fmt.Sprintf("%s.methods[%d]", field, i),
				Value:   name,
				Hint:    suggest(name),
				Wrapped: lateral.ErrInvalidController,
			}
		}
		m.Methods[i] = id
	}

	if blend == lateral.AngleWeighted {
		if m.Methods[0] == m.Methods[1] || m.Methods[1] == m.Methods[2] || m.Methods[0] == m.Methods[2] {
			return Mode{}, &ConfigError{Field: field + ".methods", Value: zone.Methods, Hint: "weighted blend needs three distinct controllers", Wrapped: lateral.ErrInvalidMethods}
		}
	}

	switch c.SpeedUnits {
	case "", SpeedUnitsMPS:
	case SpeedUnitsDisplay:
		m.DisplaySpeedUnits = blend == lateral.SpeedZoned
	default:
		return Mode{}, &ConfigError{Field: "speed_units", Value: c.SpeedUnits, Hint: "use mps or display", Wrapped: lateral.ErrInvalidMode}
	}

	return m, nil
}

func checkBreakpoints(field string, bp []float64) error {
	if len(bp) != 2 {
		return &ConfigError{Field: field + ".breakpoints", Value: bp, Wrapped: lateral.ErrInvalidBreakpoints}
	}
	for _, v := range bp {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Field: field + ".breakpoints", Value: bp, Wrapped: lateral.ErrInvalidBreakpoints}
		}
	}
	if !(bp[0] < bp[1]) {
		return &ConfigError{Field: field + ".breakpoints", Value: bp, Wrapped: lateral.ErrInvalidBreakpoints}
	}
	return nil
}

// suggest returns a "did you mean" hint for a mistyped controller name.
func suggest(name string) string {
	best, bestDist := "", 3
	for _, candidate := range lateral.ControllerNames() {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best)
}

// ActiveZone returns the zone block read by the configured mode, or nil
// when the mode is unknown.
func (c *Config) ActiveZone() *ZoneConfig {
	blend, err := lateral.ParseBlendMode(c.Mode)
	if err != nil {
		return nil
	}
	switch blend {
	case lateral.SpeedZoned:
		return &c.Speed
	case lateral.AngleZoned:
		return &c.Angle
	default:
		return &c.Weighted
	}
}
