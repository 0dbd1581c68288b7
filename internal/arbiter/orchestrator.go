package arbiter

import (
	"math"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/control"
	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/logging"
	"github.com/san-kum/latctl/internal/units"
	"go.uber.org/zap"
)

// State is the cross-cycle arbitration state.
type State struct {
	PreviousOutputTorque float64
	Selected             lateral.ControllerID
	Active               bool
}

func inactiveState() State {
	return State{Selected: lateral.NoController}
}

// Orchestrator owns the controller bank and runs one arbitration per cycle.
// It is not safe for concurrent use; the control loop calls Update once per tick.
type Orchestrator struct {
	mode     config.Mode
	bank     control.Bank
	blender  *Blender
	minSpeed float64
	log      *zap.Logger

	state State
	cands Candidates
}

// New validates cfg and builds an orchestrator over freshly constructed laws.
func New(cfg *config.Config, log *zap.Logger) (*Orchestrator, error) {
	bank, err := control.NewBank(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithBank(cfg, bank, log)
}

// NewWithBank builds an orchestrator over a caller-supplied bank. Every id in
// the configured method set must have a facade.
func NewWithBank(cfg *config.Config, bank control.Bank, log *zap.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := cfg.ArbitrationMode()
	if err != nil {
		return nil, err
	}
	for _, id := range mode.Methods {
		if _, err := bank.Get(id); err != nil {
			return nil, err
		}
	}

	return &Orchestrator{
		mode:     mode,
		bank:     bank,
		blender:  NewBlender(mode),
		minSpeed: cfg.Vehicle.MinSteerSpeed,
		log:      logging.OrNop(log).Named("arbiter"),
		state:    inactiveState(),
	}, nil
}

func (o *Orchestrator) Mode() config.Mode { return o.mode }

func (o *Orchestrator) State() State { return o.state }

// Update runs one control cycle.
func (o *Orchestrator) Update(active bool, in lateral.Input) lateral.Command {
	speed := in.State.SpeedMPS
	engaged := active && speed >= o.minSpeed

	if !engaged {
		if o.state.Active {
			reason := "inactive"
			if active {
				reason = "below min speed"
			}
			o.log.Info("disengaged", zap.String("reason", reason), zap.Float64("speed", speed))
		}
		o.bank.ResetAll()
		o.state = inactiveState()
		return o.blender.Inactive()
	}

	if !o.state.Active {
		o.log.Info("engaged", zap.Float64("speed", speed), zap.Stringer("mode", o.mode.Blend))
		o.bank.ResetAll()
		o.state = State{Selected: lateral.NoController, Active: true}
	}

	o.evaluate(in)

	mode, value := o.operatingPoint(in)
	d := Select(mode, value, o.state.PreviousOutputTorque, &o.cands)
	cmd := o.blender.Blend(d, &o.cands)

	if d.Selected != o.state.Selected {
		o.log.Debug("selection changed",
			zap.Stringer("from", o.state.Selected),
			zap.Stringer("to", d.Selected),
			zap.Float64("value", value))
	}
	o.state.PreviousOutputTorque = cmd.Torque
	o.state.Selected = d.Selected
	return cmd
}

// evaluate invokes every configured law exactly once. A failing law
// contributes a zero candidate.
func (o *Orchestrator) evaluate(in lateral.Input) {
	for id := range o.cands {
		o.cands[id] = lateral.Candidate{}
		cid := lateral.ControllerID(id)
		if !o.mode.Uses(cid) {
			continue
		}
		cand, err := o.bank[id].Update(true, in)
		if err != nil {
			o.log.Warn("controller failed", zap.Stringer("controller", cid), zap.Error(err))
			continue
		}
		o.cands[id] = cand
	}
}

// operatingPoint returns the mode with breakpoints in m/s and the scalar the
// selector compares against them.
func (o *Orchestrator) operatingPoint(in lateral.Input) (config.Mode, float64) {
	mode := o.mode
	switch mode.Blend {
	case lateral.SpeedZoned:
		if mode.DisplaySpeedUnits {
			u := units.Display(in.State.IsMph)
			mode.Breakpoints[0] = units.ToMPS(mode.Breakpoints[0], u)
			mode.Breakpoints[1] = units.ToMPS(mode.Breakpoints[1], u)
		}
		return mode, in.State.SpeedMPS
	default:
		return mode, math.Abs(in.State.SteeringAngleDeg)
	}
}
