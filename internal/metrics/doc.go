// Package metrics scores replay runs.
//
// Metrics:
//   - TorqueEffort: mean |torque| over engaged cycles
//   - SaturationRatio: share of engaged cycles flagged saturated
//   - SelectionSwitches: selected-controller changes while engaged
//   - MaxTorqueStep: largest cycle-to-cycle change of the output
//   - Engagements: inactive to active transitions
package metrics

import "github.com/san-kum/latctl/internal/sim"

// Default returns a fresh instance of every metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewTorqueEffort(),
		NewSaturationRatio(),
		NewSelectionSwitches(),
		NewMaxTorqueStep(),
		NewEngagements(),
	}
}
