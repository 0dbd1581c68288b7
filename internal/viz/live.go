package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/latctl/internal/lateral"
	"github.com/san-kum/latctl/internal/sim"
)

const (
	historyCapacity = 600
	frameRate       = time.Second / 60
	maxStepsPerTick = 16
)

type TickMsg time.Time

// StepperFactory builds a fresh stepper, used on start and on restart.
type StepperFactory func() (*sim.Stepper, error)

// Model is the live arbitration view.
type Model struct {
	newStepper StepperFactory
	stepper    *sim.Stepper
	err        error

	running      bool
	stepsPerTick int
	showHelp     bool

	last      sim.Cycle
	torque    []float64
	selection []sim.Cycle
	counts    [lateral.NumControllers]int
	engaged   int
	switches  int
}

func NewModel(factory StepperFactory) Model {
	m := Model{
		newStepper:   factory,
		running:      true,
		stepsPerTick: 2,
	}
	m.restart()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the scenario.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		case "t":
			NextTheme()
		case "+", "=":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerTick; i++ {
				if !m.step() {
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) restart() {
	m.stepper, m.err = m.newStepper()
	m.last = sim.Cycle{}
	m.torque = m.torque[:0]
	m.selection = m.selection[:0]
	m.counts = [lateral.NumControllers]int{}
	m.engaged, m.switches = 0, 0
	m.running = m.err == nil
}

// step advances one cycle and records it. It returns false at the end.
func (m *Model) step() bool {
	c, ok := m.stepper.Next()
	if !ok {
		return false
	}

	d := c.Command.Diagnostics
	prev := m.last.Command.Diagnostics
	if d.Active {
		m.engaged++
		if d.Selected.Valid() {
			m.counts[d.Selected]++
		}
		if prev.Active && prev.Selected != d.Selected {
			m.switches++
		}
	}
	m.last = c

	m.torque = append(m.torque, c.Command.Torque)
	if len(m.torque) > historyCapacity {
		m.torque = m.torque[1:]
	}
	m.selection = append(m.selection, c)
	if len(m.selection) > historyCapacity {
		m.selection = m.selection[1:]
	}
	return true
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render("ERROR: " + m.err.Error())
	case m.stepper != nil && m.stepper.Done():
		return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render("FINISHED")
	case !m.running:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render("PAUSED")
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Success).Render(fmt.Sprintf("RUNNING x%d", m.stepsPerTick))
}

func (m Model) row(label, value string) string {
	return labelStyle.Foreground(CurrentTheme.Muted).Render(label) +
		lipgloss.NewStyle().Foreground(CurrentTheme.Text).Render(value) + "\n"
}

// View renders the TUI.
func (m Model) View() string {
	var s strings.Builder

	name := "scenario"
	if m.stepper != nil {
		name = m.stepper.Scenario().Name
	}
	s.WriteString(headerStyle.Foreground(CurrentTheme.Primary).Render(strings.ToUpper(name)) + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.torque) > 1 {
		chart := asciigraph.Plot(m.torque,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.LowerBound(-lateral.SteerMax),
			asciigraph.UpperBound(lateral.SteerMax),
			asciigraph.Caption("torque"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(SelectionStrip(m.selection, 60) + "\n\n")
	}

	c := m.last
	d := c.Command.Diagnostics
	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", c.Time)))
	s.WriteString(m.row("Speed", fmt.Sprintf("%.1f m/s", c.SpeedMPS)))
	s.WriteString(m.row("Angle", fmt.Sprintf("%.1f deg", c.SteeringAngleDeg)))
	s.WriteString(m.row("Engaged", fmt.Sprintf("%v", d.Active)))
	s.WriteString(labelStyle.Foreground(CurrentTheme.Muted).Render("Selected") + ControllerBadge(d.Selected) + "\n")
	s.WriteString(m.row("Torque", fmt.Sprintf("%+.3f", c.Command.Torque)))
	s.WriteString(m.row("Desired", fmt.Sprintf("%+.2f deg", c.Command.DesiredAngleDeg)))
	if d.Saturated {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render("SATURATED") + "\n")
	}
	s.WriteString(m.row("Switches", fmt.Sprintf("%d", m.switches)))

	s.WriteString("\nSHARE\n")
	for id := lateral.ControllerID(0); id < lateral.NumControllers; id++ {
		share := 0.0
		if m.engaged > 0 {
			share = float64(m.counts[id]) / float64(m.engaged)
		}
		s.WriteString(fmt.Sprintf("%-7s %s %5.1f%%\n", id, ProgressBar(share, 20, CurrentTheme.Controllers[id]), share*100))
	}

	s.WriteString(helpStyle.Foreground(CurrentTheme.Muted).Render("SP:Pause R:Restart T:Theme +/-:Speed ?:Help Q:Quit"))
	view := panelStyle.BorderForeground(CurrentTheme.Muted).Render(s.String())

	if m.showHelp {
		return `
KEYBOARD SHORTCUTS
  Space  pause / resume
  R      restart the scenario
  T      cycle themes
  + / -  playback speed
  ?      toggle this help
  Q      quit
` + "\n" + view
	}
	return view
}

// Run starts the live view on the alternate screen.
func Run(factory StepperFactory) error {
	_, err := tea.NewProgram(NewModel(factory), tea.WithAltScreen()).Run()
	return err
}
