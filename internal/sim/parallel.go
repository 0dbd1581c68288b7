package sim

import (
	"context"
	"sync"

	"github.com/san-kum/latctl/internal/arbiter"
	"go.uber.org/zap"
)

// Batch runs independent scenarios concurrently. Each run gets its own
// orchestrator from NewOrchestrator, since orchestrators hold per-run state.
type Batch struct {
	NewOrchestrator func() (*arbiter.Orchestrator, error)
	NewMetrics      func() []Metric
	Log             *zap.Logger
}

func (b *Batch) Run(ctx context.Context, scenarios []Scenario) ([]*Result, error) {
	results := make([]*Result, len(scenarios))
	errs := make([]error, len(scenarios))

	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(idx int, sc Scenario) {
			defer wg.Done()

			orch, err := b.NewOrchestrator()
			if err != nil {
				errs[idx] = err
				return
			}
			r := New(orch, b.Log)
			if b.NewMetrics != nil {
				for _, m := range b.NewMetrics() {
					r.AddMetric(m)
				}
			}
			results[idx], errs[idx] = r.Run(ctx, sc)
		}(i, sc)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
