package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/sim"
)

// PlotTorque renders the output torque of a run.
func PlotTorque(cycles []sim.Cycle, width, height int) string {
	if len(cycles) == 0 {
		return "(no cycles)"
	}
	torque := make([]float64, len(cycles))
	for i, c := range cycles {
		torque[i] = c.Command.Torque
	}
	return asciigraph.Plot(torque,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.LowerBound(-lateral.SteerMax),
		asciigraph.UpperBound(lateral.SteerMax),
		asciigraph.Precision(2),
		asciigraph.Caption("output torque"),
	)
}

// PlotOperatingPoint renders speed (m/s) and |steering angle| (deg) together.
func PlotOperatingPoint(cycles []sim.Cycle, width, height int) string {
	if len(cycles) == 0 {
		return "(no cycles)"
	}
	speed := make([]float64, len(cycles))
	angle := make([]float64, len(cycles))
	for i, c := range cycles {
		speed[i] = c.SpeedMPS
		if c.SteeringAngleDeg < 0 {
			angle[i] = -c.SteeringAngleDeg
		} else {
			angle[i] = c.SteeringAngleDeg
		}
	}
	return asciigraph.PlotMany([][]float64{speed, angle},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
		asciigraph.Caption("speed m/s (cyan), |angle| deg (yellow)"),
	)
}

// selectionGlyph tags a cycle: a controller letter, "~" for a weighted
// blend, "·" when disengaged.
func selectionGlyph(c sim.Cycle) string {
	d := c.Command.Diagnostics
	if !d.Active {
		return "·"
	}
	if d.Selected == lateral.NoController {
		return "~"
	}
	return controllerGlyph(d.Selected)
}

// SelectionStrip compresses the selection history into width columns, each
// showing the most frequent tag of its bucket.
func SelectionStrip(cycles []sim.Cycle, width int) string {
	if len(cycles) == 0 || width <= 0 {
		return ""
	}
	if width > len(cycles) {
		width = len(cycles)
	}

	var b strings.Builder
	for col := 0; col < width; col++ {
		lo := col * len(cycles) / width
		hi := (col + 1) * len(cycles) / width
		counts := map[string]int{}
		best, bestN := "", 0
		for _, c := range cycles[lo:hi] {
			g := selectionGlyph(c)
			counts[g]++
			if counts[g] > bestN {
				best, bestN = g, counts[g]
			}
		}
		b.WriteString(best)
	}
	return b.String()
}

// SelectionLegend explains the strip glyphs.
func SelectionLegend() string {
	parts := make([]string, 0, lateral.NumControllers+2)
	for id := lateral.ControllerID(0); id < lateral.NumControllers; id++ {
		parts = append(parts, fmt.Sprintf("%s=%s", controllerGlyph(id), id))
	}
	parts = append(parts, "~=weighted", "·=inactive")
	return strings.Join(parts, " ")
}
