// Package units converts vehicle speeds between m/s and display units.
package units

// Unit constants
const (
	MPS = "mps"
	MPH = "mph"
	KPH = "kph"
)

const (
	mpsToMPH = 2.23694
	mpsToKPH = 3.6
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// Display returns the dashboard unit for a cycle's unit flag.
func Display(isMph bool) string {
	if isMph {
		return MPH
	}
	return KPH
}

// FromMPS converts a speed from meters per second to the target units.
// Unknown units pass the value through unchanged.
func FromMPS(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * mpsToMPH
	case KPH:
		return speedMPS * mpsToKPH
	default:
		return speedMPS
	}
}

// ToMPS converts a speed in the given units to meters per second.
func ToMPS(speed float64, units string) float64 {
	switch units {
	case MPH:
		return speed / mpsToMPH
	case KPH:
		return speed / mpsToKPH
	default:
		return speed
	}
}
