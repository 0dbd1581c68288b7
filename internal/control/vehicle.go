package control

import (
	"math"

	"github.com/san-kum/latctl/internal/config"
)

// Vehicle carries the steering geometry and limits shared by every law.
type Vehicle struct {
	SteerRatio         float64
	Wheelbase          float64
	UndersteerGradient float64
	SteerLimitTimer    float64
	MinSteerSpeed      float64
}

func VehicleFromConfig(c config.VehicleConfig) Vehicle {
	return Vehicle{
		SteerRatio:         c.SteerRatio,
		Wheelbase:          c.Wheelbase,
		UndersteerGradient: c.UndersteerGradient,
		SteerLimitTimer:    c.SteerLimitTimer,
		MinSteerSpeed:      c.MinSteerSpeed,
	}
}

// SteerFromCurvature returns the steering wheel angle in radians that holds
// the given path curvature at speed v.
func (v Vehicle) SteerFromCurvature(curvature, speed float64) float64 {
	return curvature * v.SteerRatio * (v.Wheelbase + v.UndersteerGradient*speed*speed)
}

// CurvatureFromSteer inverts SteerFromCurvature.
func (v Vehicle) CurvatureFromSteer(steerRad, speed float64) float64 {
	den := v.SteerRatio * (v.Wheelbase + v.UndersteerGradient*speed*speed)
	if den == 0 {
		return 0
	}
	return steerRad / den
}

// engaged reports whether a law may command torque this tick.
func (v Vehicle) engaged(active bool, speed float64) bool {
	return active && speed >= v.MinSteerSpeed
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }
