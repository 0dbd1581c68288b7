package tune

import (
	"context"
	"fmt"

	"github.com/san-kum/latctl/internal/arbiter"
	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/sim"
	"go.uber.org/zap"
)

const (
	ParamLow  = "low"
	ParamHigh = "high"
)

// Breakpoints scores zone breakpoint pairs by replaying a scenario.
type Breakpoints struct {
	Base       *config.Config
	Scenario   sim.Scenario
	NewMetrics func() []sim.Metric
	Log        *zap.Logger
}

// Evaluate replays the scenario with the active zone's breakpoints replaced
// by params[ParamLow] and params[ParamHigh]. Pairs that fail validation are
// returned as errors so the search skips them.
func (b *Breakpoints) Evaluate(ctx context.Context, params map[string]float64) (map[string]float64, error) {
	cfg := *b.Base
	zone := cfg.ActiveZone()
	if zone == nil {
		return nil, fmt.Errorf("tune: unknown mode %q", cfg.Mode)
	}
	zone.Breakpoints = []float64{params[ParamLow], params[ParamHigh]}

	orch, err := arbiter.New(&cfg, b.Log)
	if err != nil {
		return nil, err
	}
	r := sim.New(orch, b.Log)
	if b.NewMetrics != nil {
		for _, m := range b.NewMetrics() {
			r.AddMetric(m)
		}
	}
	result, err := r.Run(ctx, b.Scenario)
	if err != nil {
		return nil, err
	}
	return result.Metrics, nil
}

// SearchBreakpoints runs a grid over the low and high breakpoint ranges.
func SearchBreakpoints(ctx context.Context, b *Breakpoints, low, high []float64, metricName string) (Point, []Point, error) {
	g := NewGridSearch([]string{ParamLow, ParamHigh}, [][]float64{low, high})
	return g.Search(ctx, b.Evaluate, metricName)
}
