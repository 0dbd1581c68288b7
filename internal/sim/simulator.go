package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/latctl/internal/arbiter"
	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/logging"
	"go.uber.org/zap"
)

// Publisher receives every command the runner produces.
type Publisher interface {
	Publish(ctx context.Context, cmd lateral.Command) error
}

// Runner replays a Scenario through an Orchestrator one cycle per dt.
type Runner struct {
	orch      *arbiter.Orchestrator
	metrics   []Metric
	observers []Observer
	publisher Publisher
	log       *zap.Logger
}

func New(orch *arbiter.Orchestrator, log *zap.Logger) *Runner {
	return &Runner{
		orch:      orch,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.OrNop(log).Named("sim"),
	}
}

func (r *Runner) AddMetric(m Metric)       { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)   { r.observers = append(r.observers, o) }
func (r *Runner) SetPublisher(p Publisher) { r.publisher = p }

func (r *Runner) Orchestrator() *arbiter.Orchestrator {
	return r.orch
}

func (r *Runner) Run(ctx context.Context, sc Scenario) (*Result, error) {
	if err := Validate(sc); err != nil {
		return nil, err
	}

	steps := sc.Steps()
	result := &Result{
		Scenario: sc.Name,
		Cycles:   make([]Cycle, 0, steps),
		Metrics:  make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	r.log.Info("run started", zap.String("scenario", sc.Name), zap.Int("steps", steps))

	err := r.loop(ctx, sc, func(c Cycle) bool {
		result.Cycles = append(result.Cycles, c)
		result.Steps++
		if r.publisher != nil {
			if err := r.publisher.Publish(ctx, c.Command); err != nil {
				result.PublishErrors++
				r.log.Debug("publish failed", zap.Int("step", c.Step), zap.Error(err))
			}
		}
		return true
	})

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if err != nil {
		return result, err
	}

	r.log.Info("run finished", zap.String("scenario", sc.Name), zap.Int("steps", result.Steps))
	return result, nil
}

// RunWithCallback steps the scenario until it ends, ctx is done, or the
// callback returns false. Nothing is recorded.
func (r *Runner) RunWithCallback(ctx context.Context, sc Scenario, callback func(Cycle) bool) error {
	if err := Validate(sc); err != nil {
		return err
	}
	return r.loop(ctx, sc, callback)
}

func (r *Runner) loop(ctx context.Context, sc Scenario, callback func(Cycle) bool) error {
	st, err := NewStepper(r.orch, sc)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c, ok := st.Next()
		if !ok {
			return nil
		}
		for _, m := range r.metrics {
			m.Observe(c)
		}
		for _, obs := range r.observers {
			obs.OnCycle(c)
		}
		if !callback(c) {
			return nil
		}
	}
}

func (sc Scenario) input(t, lastTorque float64) lateral.Input {
	return lateral.Input{
		State: lateral.VehicleState{
			SpeedMPS:          sc.Speed.At(t),
			SteeringAngleDeg:  sc.SteeringAngle.At(t),
			SteeringRateDeg:   sc.SteeringRate.At(t),
			SteeringTorqueEPS: sc.EPSTorque.At(t),
			SteeringPressed:   inWindows(sc.Pressed, t),
			IsMph:             sc.IsMph,
		},
		Targets: lateral.Targets{
			Curvature:     sc.Curvature.At(t),
			CurvatureRate: sc.CurvatureRate.At(t),
		},
		Aux: lateral.Aux{
			RollRad:    sc.Roll.At(t),
			YawRate:    sc.YawRate.At(t),
			LastTorque: lastTorque,
		},
	}
}

// Validate checks that a scenario can be stepped.
func Validate(sc Scenario) error {
	if !(sc.Dt > 0) || math.IsInf(sc.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidScenario, sc.Dt)
	}
	if !(sc.Duration > 0) || math.IsInf(sc.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidScenario, sc.Duration)
	}
	profiles := map[string]Profile{
		"speed":          sc.Speed,
		"steering_angle": sc.SteeringAngle,
		"steering_rate":  sc.SteeringRate,
		"curvature":      sc.Curvature,
		"curvature_rate": sc.CurvatureRate,
		"roll":           sc.Roll,
		"yaw_rate":       sc.YawRate,
		"eps_torque":     sc.EPSTorque,
	}
	for name, p := range profiles {
		if !p.valid() {
			return fmt.Errorf("%w: profile %s needs matching, increasing knots", ErrInvalidScenario, name)
		}
	}
	return nil
}
