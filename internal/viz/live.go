package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/clothsim/internal/sim"
)

const (
	width           = 72
	height          = 26
	historyCapacity = 240
	frameInterval   = time.Second / 30
	gifPath         = "clothsim.gif"

	// strain at which the stretch gauge is full
	strainGaugeScale = 0.25
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of a scene.
type Model struct {
	scene         *sim.Scene
	canvas        *Canvas
	camera        *Camera
	running       bool
	showHelp      bool
	energyHistory []float64
	recorder      *GIFRecorder
	gifPath       string
	drawMode      DrawMode
	status        string
	err           error
	log           *zap.Logger
}

func NewModel(scene *sim.Scene, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		scene:         scene,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(sceneTarget(scene)),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		gifPath:       gifPath,
		log:           log,
	}
}

// sceneTarget aims the camera between the cloth and the ground.
func sceneTarget(scene *sim.Scene) mgl64.Vec3 {
	c := scene.Mesh().Centroid()
	if scene.Config.Ground.Enabled {
		c[1] = (c.Y() + scene.Config.Ground.Position[1]) / 2
	}
	return c
}

func (m Model) Init() tea.Cmd {
	return tick()
}

var pullKeys = map[string]mgl64.Vec3{
	"left":  {-1, 0, 0},
	"right": {1, 0, 0},
	"up":    {0, 0, -1},
	"down":  {0, 0, 1},
	"w":     {0, 1, 0},
	"s":     {0, -1, 0},
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if dir, ok := pullKeys[key]; ok {
			m.scene.Pull(dir)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			if m.recorder != nil {
				m.saveRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "o":
			m.scene.ReleasePin(0)
		case "p":
			m.scene.ReleasePin(1)
		case "g":
			m.toggleRecording()
		case "m":
			m.drawMode = m.drawMode.Next()
			m.status = "draw: " + m.drawMode.String()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances one frame. An unstable frame pauses the view.
func (m *Model) step() {
	if err := m.scene.Sim.Frame(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.energyHistory = append(m.energyHistory, m.scene.Mesh().KineticEnergy())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	if m.recorder != nil {
		m.draw()
		m.recorder.Add(m.canvas)
	}
}

func (m *Model) reset() {
	if err := m.scene.Reset(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.err = nil
	m.energyHistory = m.energyHistory[:0]
	m.camera.Target = sceneTarget(m.scene)
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewGIFRecorder()
		m.status = "recording"
		return
	}
	m.saveRecording()
}

func (m *Model) saveRecording() {
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.status = "gif: " + err.Error()
		m.log.Error("gif save failed", zap.String("path", m.gifPath), zap.Error(err))
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.gifPath)
		m.log.Info("gif saved", zap.String("path", m.gifPath), zap.Int("frames", m.recorder.Len()))
	}
	m.recorder = nil
}

func (m *Model) draw() {
	DrawScene(m.canvas, m.camera, m.scene.Mesh(), m.scene.Sim.Colliders(), m.drawMode)
}

func (m Model) View() string {
	st := currentStyles()
	m.draw()
	canvasView := st.canvas.Render(m.canvas.String())

	mesh := m.scene.Mesh()
	s := m.scene.Sim

	var b strings.Builder
	b.WriteString(st.header.Render("CLOTH") + "\n")
	switch {
	case m.err != nil:
		b.WriteString(st.err.Render("UNSTABLE") + "\n")
	case m.running:
		b.WriteString(st.running.Render("RUNNING") + "\n")
	default:
		b.WriteString(st.paused.Render("PAUSED") + "\n")
	}
	if m.recorder != nil {
		b.WriteString(st.err.Render(fmt.Sprintf("REC %d", m.recorder.Len())) + "\n")
	}
	b.WriteString("\n")

	low := mesh.LowestPoint()
	b.WriteString(st.row("Frame", fmt.Sprintf("%d", s.FrameCount())) + "\n")
	b.WriteString(st.row("Time", fmt.Sprintf("%.2fs", s.Time())) + "\n")
	b.WriteString(st.row("Points", fmt.Sprintf("%d", len(mesh.Points()))) + "\n")
	b.WriteString(st.row("Springs", fmt.Sprintf("%d", len(mesh.Springs()))) + "\n")
	b.WriteString(st.row("Pins", fmt.Sprintf("%d", len(mesh.Pinned()))) + "\n")
	b.WriteString(st.row("Energy", fmt.Sprintf("%.3f", mesh.KineticEnergy())) + "\n")
	strain := mesh.MaxStrain()
	b.WriteString(st.row("Strain", fmt.Sprintf("%.2f%%", 100*strain)) + "\n")
	b.WriteString(st.row("", ProgressBar(strain/strainGaugeScale, 16)) + "\n")
	b.WriteString(st.row("Lowest", fmt.Sprintf("%.3f", low.Y())) + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(5),
			asciigraph.Width(28),
			asciigraph.Caption("kinetic energy"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + st.err.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + st.value.Render(m.status) + "\n")
	}

	b.WriteString(st.help.Render("space pause  r reset  q quit  ? help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(b.String()))

	if m.showHelp {
		return helpView(st) + "\n\n" + mainView
	}
	return mainView
}

func helpView(st styles) string {
	lines := []string{
		st.keyHints("space", "pause/resume", "n", "single frame", "r", "reset"),
		st.keyHints("arrows", "pull in x/z", "w/s", "pull up/down"),
		st.keyHints("o", "release pin 1", "p", "release pin 2"),
		st.keyHints("x/y/z", "rotate (shift reverses)", "+/-", "zoom"),
		st.keyHints("m", "draw mode", "t", "theme", "g", "record gif"),
		st.keyHints("q", "quit"),
	}
	return strings.Join(lines, "\n")
}

// RunLive runs the live view until the user quits.
func RunLive(scene *sim.Scene, log *zap.Logger) error {
	_, err := tea.NewProgram(NewModel(scene, log), tea.WithAltScreen()).Run()
	return err
}
