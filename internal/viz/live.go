package viz

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

const (
	liveWidth  = 72
	liveHeight = 24
	trailTicks = 40
	frameRate  = time.Second / 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel animates a linkage over one rotation period and lets the user
// tune its constraints. Every edit re-sweeps a clone of the linkage; a
// geometry that cannot be assembled is reported and the edit is dropped.
type LiveModel struct {
	lk           *linkage.Linkage
	init         []geom.Point
	subdivisions int
	scene        *Scene
	canvas       *Canvas
	tick         int
	running      bool

	labels   []string
	params   []float64
	initial  []float64
	selected int
	watched  int
	status   string

	recorder *Recorder
	gifPath  string
	showHelp bool
}

// NewLiveModel sweeps lk once to build the first scene. lk itself is never
// advanced; all sweeps run on clones.
func NewLiveModel(lk *linkage.Linkage, subdivisions int) (LiveModel, error) {
	m := LiveModel{
		lk:           lk,
		init:         lk.Positions(),
		subdivisions: subdivisions,
		canvas:       NewCanvas(liveWidth, liveHeight),
		running:      true,
		labels:       lk.ConstraintLabels(),
		params:       lk.Constraints(),
		initial:      lk.Constraints(),
		watched:      lk.Len() - 1,
		gifPath:      "linkage.gif",
	}
	scene, err := m.sweep(m.params)
	if err != nil {
		return LiveModel{}, err
	}
	m.scene = scene
	return m, nil
}

// WithGIFPath sets where the g key saves recordings.
func (m LiveModel) WithGIFPath(path string) LiveModel {
	m.gifPath = path
	return m
}

func (m LiveModel) sweep(params []float64) (*Scene, error) {
	c := m.lk.Clone()
	if err := c.SetPositions(m.init); err != nil {
		return nil, err
	}
	if err := c.SetConstraints(params); err != nil {
		return nil, err
	}
	traj, err := c.Sweep(c.RotationPeriod(), m.subdivisions)
	if err != nil {
		return nil, err
	}
	return NewScene(c, traj)
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.apply(slices.Clone(m.initial))
			m.tick = 0
		case "[":
			m.running = false
			m.tick = (m.tick - 1 + m.scene.Len()) % m.scene.Len()
		case "]":
			m.running = false
			m.tick = (m.tick + 1) % m.scene.Len()
		case "tab":
			if len(m.params) > 0 {
				m.selected = (m.selected + 1) % len(m.params)
			}
		case "up", "k":
			m.adjust(1.05)
		case "down", "j":
			m.adjust(0.95)
		case "w":
			m.watched = (m.watched + 1) % m.lk.Len()
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.tick = (m.tick + 1) % m.scene.Len()
		}
		if m.recorder != nil {
			m.draw()
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) adjust(factor float64) {
	if len(m.params) == 0 {
		return
	}
	next := slices.Clone(m.params)
	next[m.selected] *= factor
	m.apply(next)
}

func (m *LiveModel) apply(params []float64) {
	scene, err := m.sweep(params)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.params, m.scene, m.status = params, scene, ""
	m.tick %= scene.Len()
}

func (m *LiveModel) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder()
		m.status = "recording"
		return
	}
	f, err := os.Create(m.gifPath)
	if err == nil {
		err = m.recorder.Encode(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.gifPath)
	}
	m.recorder = nil
}

func (m *LiveModel) draw() {
	m.canvas.Clear()
	m.scene.Draw(m.canvas, m.tick, trailTicks)
}

func (m LiveModel) View() string {
	m.draw()
	canvasView := canvasStyle.Foreground(CurrentTheme.Locus).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(Title(strings.ToUpper(m.lk.Name)) + "\n\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if m.recorder != nil {
		status += " ● REC"
	}
	s.WriteString(status + "\n")
	s.WriteString(ProgressBar(float64(m.tick+1)/float64(m.scene.Len()), 30) + "\n\n")

	s.WriteString(KeyValue("Tick", fmt.Sprintf("%d/%d", m.tick+1, m.scene.Len())) + "\n")
	s.WriteString(KeyValue("DOF", m.lk.DegreesOfFreedom()) + "\n")
	s.WriteString(KeyValue("Degenerate", len(m.scene.Linkage.Diagnostics())) + "\n")

	joint := m.lk.Joints()[m.watched]
	locus := m.scene.Trajectory.Locus(m.watched)
	xs := make([]float64, len(locus))
	ys := make([]float64, len(locus))
	for i, p := range locus {
		xs[i], ys[i] = p.X, p.Y
	}
	if len(ys) > 1 {
		chart := asciigraph.Plot(ys, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(joint.Name()+" y"))
		s.WriteString("\n" + chart + "\n")
		s.WriteString(KeyValue(joint.Name()+" x", Sparkline(xs, 30)) + "\n")
	}

	s.WriteString("\n" + Separator(40) + "\nCONSTRAINTS\n")
	if len(m.params) == 0 {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	for i, v := range m.params {
		ratio := 0.5
		if m.initial[i] != 0 {
			ratio = min(max(v/(2*m.initial[i]), 0), 1)
		}
		filled := int(ratio * 10)
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", 10-filled) + "]"
		line := fmt.Sprintf("%-10s %s %.3f", m.labels[i], bar, v)
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + ErrorText(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help\n[ ]:Step ↑↓:Tune Tab:Next W:Watch"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpScreen + "\n\n" + mainView
	}
	return mainView
}

const helpScreen = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restore constraints      ║
║  Q        - Quit                     ║
║  Tab      - Next constraint          ║
║  Up/K     - Constraint +5%           ║
║  Down/J   - Constraint -5%           ║
║  [ ]      - Step back/forward        ║
║  W        - Cycle plotted joint      ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
