package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/latctl/internal/lateral"
)

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	headerStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Width(14)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Italic(true).MarginTop(1)
)

// controllerGlyph is the one-letter tag for a controller in strips.
func controllerGlyph(id lateral.ControllerID) string {
	switch id {
	case lateral.PID:
		return "P"
	case lateral.INDI:
		return "I"
	case lateral.LQR:
		return "L"
	case lateral.Torque:
		return "T"
	}
	return "·"
}

// ControllerBadge renders a controller name in its theme color.
func ControllerBadge(id lateral.ControllerID) string {
	if !id.Valid() {
		return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(id.String())
	}
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Controllers[id]).Render(strings.ToUpper(id.String()))
}

// ProgressBar renders a filled bar of the given width.
func ProgressBar(percent float64, width int, color lipgloss.Color) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled)
	rest := strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar) +
		lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(rest)
}
