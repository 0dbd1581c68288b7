package lateral

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DT is the control loop period in seconds.
	DT = 0.01

	// SteerMax is the symmetric normalized torque limit.
	SteerMax = 1.0

	// MinSteerSpeed is the speed below which no torque is commanded.
	MinSteerSpeed = 0.3
)

type ControllerID int

const (
	PID ControllerID = iota
	INDI
	LQR
	Torque
)

// NoController marks a cycle without a single source controller.
const NoController ControllerID = -1

const NumControllers = 4

var controllerNames = [NumControllers]string{"pid", "indi", "lqr", "torque"}

func (id ControllerID) Valid() bool {
	return id >= PID && id <= Torque
}

func (id ControllerID) String() string {
	if !id.Valid() {
		return "none"
	}
	return controllerNames[id]
}

// ControllerNames lists the accepted controller names in id order.
func ControllerNames() []string {
	return controllerNames[:]
}

// ParseControllerID accepts a controller name or its numeric id.
func ParseControllerID(s string) (ControllerID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range controllerNames {
		if s == name {
			return ControllerID(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if id := ControllerID(n); id.Valid() {
			return id, nil
		}
	}
	return NoController, fmt.Errorf("%w: %q", ErrInvalidController, s)
}

type BlendMode int

const (
	SpeedZoned BlendMode = iota
	AngleZoned
	AngleWeighted
)

var blendModeNames = [...]string{"speed", "angle", "angle_weighted"}

func (m BlendMode) Valid() bool {
	return m >= SpeedZoned && m <= AngleWeighted
}

func (m BlendMode) String() string {
	if !m.Valid() {
		return "unknown"
	}
	return blendModeNames[m]
}

// ParseBlendMode accepts a mode name or its numeric value.
func ParseBlendMode(s string) (BlendMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range blendModeNames {
		if s == name {
			return BlendMode(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if m := BlendMode(n); m.Valid() {
			return m, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// VehicleState is the measured state read from the car each cycle.
type VehicleState struct {
	SpeedMPS          float64
	SteeringAngleDeg  float64
	SteeringRateDeg   float64
	SteeringTorqueEPS float64
	SteeringPressed   bool
	IsMph             bool
}

// Targets are the kinematic targets from the planner.
type Targets struct {
	Curvature     float64
	CurvatureRate float64
}

// Aux is localization and actuator history forwarded verbatim to controllers.
type Aux struct {
	AngleOffsetDeg        float64
	AngleOffsetAverageDeg float64
	RollRad               float64
	YawRate               float64
	SteerLimited          bool
	// LastTorque is the command sent on the previous cycle.
	LastTorque float64
}

type Input struct {
	State   VehicleState
	Targets Targets
	Aux     Aux
}

type PIDTerms struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	F float64 `json:"f"`
}

type INDITerms struct {
	RateSetPoint  float64 `json:"rate_set_point"`
	AccelSetPoint float64 `json:"accel_set_point"`
	AccelError    float64 `json:"accel_error"`
	DelayedOutput float64 `json:"delayed_output"`
	Delta         float64 `json:"delta"`
}

type LQRTerms struct {
	I      float64 `json:"i"`
	Output float64 `json:"lqr_output"`
}

type TorqueTerms struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
	F float64 `json:"f"`
}

// Terms holds controller internals. Every group is always present; only the
// group of the controller that produced it carries values.
type Terms struct {
	SteeringAngleDeg float64     `json:"steering_angle_deg"`
	PID              PIDTerms    `json:"pid"`
	INDI             INDITerms   `json:"indi"`
	LQR              LQRTerms    `json:"lqr"`
	Torque           TorqueTerms `json:"torque"`
}

// Candidate is one control law's proposed command for the current cycle.
type Candidate struct {
	Torque          float64
	DesiredAngleDeg float64
	Saturated       bool
	Terms           Terms
}

type Diagnostics struct {
	Active    bool         `json:"active"`
	Selected  ControllerID `json:"selected"`
	Output    float64      `json:"output"`
	Saturated bool         `json:"saturated"`
	Terms
}

// Command is the arbitrated output of one cycle.
type Command struct {
	Torque          float64     `json:"torque"`
	DesiredAngleDeg float64     `json:"desired_angle_deg"`
	Diagnostics     Diagnostics `json:"diagnostics"`
}

// Controller is the capability every candidate control law exposes.
type Controller interface {
	// Reset clears integrators and observers to their initial condition.
	Reset()
	// Update advances internal state by exactly one tick.
	Update(active bool, in Input) (Candidate, error)
}
