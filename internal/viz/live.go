// Package viz renders a running control loop in the terminal.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/dkrol/pidlab/internal/integrators"
	"github.com/dkrol/pidlab/internal/plant"
	"github.com/dkrol/pidlab/pid"
)

const (
	graphWidth      = 80
	graphHeight     = 12
	historyCapacity = 600
	framesPerSecond = 30
)

type TickMsg time.Time

// Model steps the closed loop on every frame tick and plots the
// measurement against the setpoint.
type Model struct {
	plantName string
	dyn       plant.Dynamics
	integ     integrators.Integrator
	ctrl      *pid.Controller
	clock     *pid.ManualClock

	state    plant.State
	initial  plant.State
	setpoint float64
	dt       float64
	t        float64

	measured float64
	control  float64

	measurements []float64
	setpoints    []float64
	running      bool
}

func NewModel(plantName string, dyn plant.Dynamics, integ integrators.Integrator, ctrl *pid.Controller, clock *pid.ManualClock, x0 plant.State, setpoint, dt float64) Model {
	return Model{
		plantName:    plantName,
		dyn:          dyn,
		integ:        integ,
		ctrl:         ctrl,
		clock:        clock,
		state:        x0.Clone(),
		initial:      x0.Clone(),
		setpoint:     setpoint,
		dt:           dt,
		measured:     dyn.Output(x0),
		measurements: make([]float64, 0, historyCapacity),
		setpoints:    make([]float64, 0, historyCapacity),
		running:      true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.setpoint += m.setpointNudge()
		case "down", "j":
			m.setpoint -= m.setpointNudge()
		}
		return m, nil
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/framesPerSecond, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the loop by one frame of simulated time.
func (m *Model) step() {
	samples := int(1.0 / (m.dt * framesPerSecond))
	if samples < 1 {
		samples = 1
	}

	for i := 0; i < samples; i++ {
		m.measured = m.dyn.Output(m.state)
		m.control = m.ctrl.Compute(m.setpoint - m.measured)
		m.state = m.integ.Step(m.dyn, m.state, m.control, m.t, m.dt)
		m.t += m.dt
		m.clock.Advance(time.Duration(m.dt * float64(time.Second)))
	}

	m.measurements = append(m.measurements, m.measured)
	m.setpoints = append(m.setpoints, m.setpoint)
	if len(m.measurements) > historyCapacity {
		m.measurements = m.measurements[1:]
		m.setpoints = m.setpoints[1:]
	}
}

func (m *Model) reset() {
	m.state = m.initial.Clone()
	m.t = 0
	m.measured = m.dyn.Output(m.state)
	m.control = 0
	m.measurements = m.measurements[:0]
	m.setpoints = m.setpoints[:0]
	m.ctrl.TurnOff()
}

func (m *Model) setpointNudge() float64 {
	if m.setpoint != 0 {
		n := m.setpoint * 0.05
		if n < 0 {
			n = -n
		}
		return n
	}
	return 0.5
}

func (m Model) View() string {
	var b strings.Builder

	status := ""
	if !m.running {
		status = "  " + pausedStyle.Render("[paused]")
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("pidlab live — %s", m.plantName)) + status + "\n")

	if len(m.measurements) >= 2 {
		graph := asciigraph.PlotMany(
			[][]float64{m.setpoints, m.measurements},
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.SeriesColors(asciigraph.White, asciigraph.Green),
			asciigraph.Caption("setpoint / measurement"),
		)
		b.WriteString(graphStyle.Render(graph) + "\n")
	} else {
		b.WriteString(graphStyle.Render("collecting samples...") + "\n")
	}

	rows := []struct {
		label string
		value string
	}{
		{"t", fmt.Sprintf("%.2f s", m.t)},
		{"setpoint", fmt.Sprintf("%.3f", m.setpoint)},
		{"measured", fmt.Sprintf("%.3f", m.measured)},
		{"control", fmt.Sprintf("%.3f", m.control)},
		{"p term", fmt.Sprintf("%.3f", m.ctrl.ProportionalTerm())},
		{"i term", fmt.Sprintf("%.3f", m.ctrl.IntegralTerm())},
		{"d term", fmt.Sprintf("%.3f", m.ctrl.DerivativeTerm())},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.label) + valueStyle.Render(row.value) + "\n")
	}

	if m.ctrl.OutputLimitEnabled() && m.control != m.ctrl.ProportionalTerm()+m.ctrl.IntegralTerm()+m.ctrl.DerivativeTerm() {
		b.WriteString(satStyle.Render("output saturated") + "\n")
	}

	b.WriteString(helpStyle.Render("space pause · r reset · ↑/↓ setpoint · q quit"))
	return b.String()
}

// RunLive starts the interactive live view and blocks until quit.
func RunLive(plantName string, dyn plant.Dynamics, integ integrators.Integrator, ctrl *pid.Controller, clock *pid.ManualClock, x0 plant.State, setpoint, dt float64) error {
	p := tea.NewProgram(NewModel(plantName, dyn, integ, ctrl, clock, x0, setpoint, dt))
	_, err := p.Run()
	return err
}
