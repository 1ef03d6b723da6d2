package viz

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/trusslab/internal/analysis"
	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/metrics"
	"github.com/san-kum/trusslab/internal/scene"
	"github.com/san-kum/trusslab/internal/selection"
	"github.com/san-kum/trusslab/internal/sim"
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	historyCap  = 600
	panelWidth  = 36
	cursorStep  = 0.5
	moveStep    = 0.1
	orbitStep   = 0.1
	reportLines = 8
)

var fallbackForce = r3.Vec{Y: -10}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Sandbox is the interactive editor: a 3D cursor picks and places nodes,
// the selection controller turns key presses into edits, and the
// simulator advances the structure while running.
type Sandbox struct {
	cfg      *config.Config
	scenes   *scene.Registry
	names    []string
	sceneIdx int

	mgr    *structure.Manager
	stage  *Stage
	ctrl   *selection.Controller
	sim    *sim.Simulator
	engine *analysis.Engine
	util   *metrics.MaxUtilization
	gizmo  *Gizmo
	camera *Camera
	status *selection.Recorder
	logger *slog.Logger

	cursor   r3.Vec
	running  bool
	showHelp bool
	quitting bool
	theme    int
	report   []string
	energy   []float64
	stress   []float64

	width, height int
}

// NewSandbox builds the sandbox and loads cfg.Scene, or an empty world
// when no scene is set.
func NewSandbox(cfg *config.Config, logger *slog.Logger) (Sandbox, error) {
	if err := cfg.Validate(); err != nil {
		return Sandbox{}, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := Sandbox{
		cfg:    cfg,
		scenes: scene.NewRegistry(),
		stage:  NewStage(cfg.WorldSize),
		gizmo:  &Gizmo{},
		camera: NewCamera(cfg.WorldSize),
		status: &selection.Recorder{},
		logger: logger,
		width:  100,
		height: 30,
	}
	s.names = s.scenes.List()
	s.sceneIdx = -1
	for i, name := range s.names {
		if name == cfg.Scene {
			s.sceneIdx = i
		}
	}
	if cfg.Scene != "" && s.sceneIdx < 0 {
		return Sandbox{}, fmt.Errorf("%w: %s", scene.ErrUnknownScene, cfg.Scene)
	}

	s.mgr = structure.NewManager(cfg.World(), cfg.NodeDefaults(), logger)
	s.mgr.SetContainer(s.stage)
	sink := selection.MultiSink{s.status, selection.LogSink{Logger: logger}}
	s.ctrl = selection.New(s.mgr, cfg.World(),
		selection.WithSink(sink),
		selection.WithGizmo(s.gizmo),
		selection.WithLogger(logger))
	s.engine = analysis.New(s.mgr, cfg.EquilibriumTolerance)

	if err := s.load(); err != nil {
		return Sandbox{}, err
	}
	return s, nil
}

func (s Sandbox) Manager() *structure.Manager { return s.mgr }
func (s Sandbox) Status() string              { return s.status.Last() }
func (s Sandbox) Running() bool               { return s.running }
func (s Sandbox) Cursor() r3.Vec              { return s.cursor }
func (s Sandbox) Report() []string            { return s.report }
func (s Sandbox) Scene() string {
	if s.sceneIdx < 0 {
		return ""
	}
	return s.names[s.sceneIdx]
}

// load clears the world and rebuilds the current scene with a fresh
// simulator.
func (s *Sandbox) load() error {
	s.mgr.Clear()
	s.gizmo.Detach()
	if name := s.Scene(); name != "" {
		if err := s.scenes.Build(name, s.mgr); err != nil {
			return err
		}
	}
	stepper, err := s.cfg.NewStepper()
	if err != nil {
		return err
	}
	s.sim = sim.New(s.mgr, stepper, s.logger)
	s.util = metrics.NewMaxUtilization()
	s.sim.AddMetric(s.util)
	s.mgr.Update(0)
	s.energy, s.stress, s.report = nil, nil, nil
	s.logger.Info("scene loaded", "scene", s.Scene(), "nodes", s.mgr.NodeCount(), "beams", s.mgr.BeamCount())
	return nil
}

func (s Sandbox) Init() tea.Cmd { return tick() }

func (s Sandbox) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
	case TickMsg:
		s.step()
		return s, tick()
	}
	return s, nil
}

func (s *Sandbox) step() {
	if !s.running {
		return
	}
	if err := s.sim.Tick(s.cfg.FrameDt); err != nil {
		s.running = false
		s.status.Status("Simulation halted: " + err.Error())
		s.logger.Error("tick failed", "t", s.sim.Time(), "err", err)
		return
	}
	s.energy = appendCapped(s.energy, metrics.KineticEnergyOf(s.mgr))
	s.stress = appendCapped(s.stress, metrics.PeakStressOf(s.mgr))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	return h
}

func (s Sandbox) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	world := s.cfg.World()
	switch msg.String() {
	case "q", "ctrl+c":
		s.quitting = true
		return s, tea.Quit
	case "?":
		s.showHelp = !s.showHelp
	case " ":
		s.running = !s.running

	case "left":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{X: -cursorStep}))
	case "right":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{X: cursorStep}))
	case "up":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{Y: cursorStep}))
	case "down":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{Y: -cursorStep}))
	case "pgup":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{Z: cursorStep}))
	case "pgdown":
		s.cursor = world.Clamp(r3.Add(s.cursor, r3.Vec{Z: -cursorStep}))

	case "enter":
		s.ctrl.Pick(s.pick(false), false)
	case "c":
		s.ctrl.Pick(s.pick(false), true)
	case "b":
		s.ctrl.Pick(s.pick(true), false)
	case "n":
		n, err := s.mgr.CreateNode(s.cursor)
		if err != nil {
			s.status.Status(err.Error())
			break
		}
		s.ctrl.ClickNode(n, false)
	case "L":
		s.ctrl.LinkSelected()
	case "x":
		s.ctrl.DeleteSelected()
	case "f":
		s.ctrl.ToggleFixed()
	case "F":
		f := s.cfg.ForceVector()
		if f == (r3.Vec{}) {
			f = fallbackForce
		}
		s.ctrl.ApplyForce(f)
	case "0":
		s.ctrl.ClearForce()
	case "m":
		s.ctrl.CycleBeamMaterial()

	case "W":
		s.ctrl.MoveSelected(r3.Vec{Y: moveStep})
	case "S":
		s.ctrl.MoveSelected(r3.Vec{Y: -moveStep})
	case "A":
		s.ctrl.MoveSelected(r3.Vec{X: -moveStep})
	case "D":
		s.ctrl.MoveSelected(r3.Vec{X: moveStep})
	case "Q":
		s.ctrl.MoveSelected(r3.Vec{Z: -moveStep})
	case "E":
		s.ctrl.MoveSelected(r3.Vec{Z: moveStep})

	case "e":
		s.report = s.equilibriumReport()
	case "r":
		s.report = s.reactionReport()
	case "g":
		cog, mass := s.engine.CenterOfGravity()
		s.report = []string{fmt.Sprintf("CoG (%.3f, %.3f, %.3f) %s", cog.X, cog.Y, cog.Z, world.Unit), fmt.Sprintf("total mass %.2f", mass)}
	case "v":
		s.report = s.beamReport()
	case "o":
		s.report = s.connectivityReport()

	case "y":
		s.camera.Orbit(orbitStep, 0)
	case "Y":
		s.camera.Orbit(-orbitStep, 0)
	case "p":
		s.camera.Orbit(0, orbitStep)
	case "P":
		s.camera.Orbit(0, -orbitStep)
	case "+", "=":
		s.camera.ZoomIn()
	case "-":
		s.camera.ZoomOut()
	case "t":
		s.theme = (s.theme + 1) % len(Themes)

	case "tab":
		s.sceneIdx = (s.sceneIdx + 1) % len(s.names)
		s.running = false
		if err := s.load(); err != nil {
			s.status.Status(err.Error())
		}
	case "R":
		s.running = false
		if err := s.load(); err != nil {
			s.status.Status(err.Error())
		}
	}

	if !s.running {
		s.mgr.Update(0)
	}
	return s, nil
}

func (s Sandbox) canvasSize() (int, int) {
	return max(s.width-panelWidth-2, 10), max(s.height-3, 5)
}

// pick resolves whatever sits under the 3D cursor on screen.
func (s Sandbox) pick(beamsOnly bool) any {
	w, h := s.canvasSize()
	sw, sh := w*2, h*4
	x, y, _, ok := s.camera.Project(s.cursor, sw, sh)
	if !ok {
		return nil
	}
	return s.stage.Pick(s.camera, sw, sh, x, y, beamsOnly)
}

func (s Sandbox) equilibriumReport() []string {
	q := s.engine.CheckEquilibrium()
	return []string{
		q.Message(),
		fmt.Sprintf("net force  (%.3f, %.3f, %.3f)", q.NetForce.X, q.NetForce.Y, q.NetForce.Z),
		fmt.Sprintf("net moment (%.3f, %.3f, %.3f)", q.NetMoment.X, q.NetMoment.Y, q.NetMoment.Z),
	}
}

func (s Sandbox) reactionReport() []string {
	r, err := s.engine.CalculateMissingForces()
	if err != nil {
		return []string{err.Error()}
	}
	return []string{r.String()}
}

func (s Sandbox) beamReport() []string {
	forces := s.engine.CalculateBeamForces()
	if len(forces) == 0 {
		return []string{"no beams"}
	}
	out := make([]string, 0, len(forces))
	for _, f := range forces {
		out = append(out, fmt.Sprintf("#%d %-11s %8.2f %s", f.Beam.ID, f.Type, f.Value, UtilizationBar(f.Utilization, 8)))
	}
	return out
}

func (s Sandbox) connectivityReport() []string {
	c := s.engine.Connectivity()
	out := []string{fmt.Sprintf("%d part(s), %d floating node(s)", len(c.Components), len(c.Floating))}
	for i, part := range c.Components {
		out = append(out, fmt.Sprintf("part %d: %d node(s)", i+1, len(part)))
	}
	return out
}

func (s Sandbox) View() string {
	if s.quitting {
		return ""
	}
	if s.showHelp {
		return s.viewHelp()
	}
	theme := Themes[s.theme]

	w, h := s.canvasSize()
	canvas := NewCanvas(w, h)
	s.stage.Render(canvas, s.camera)
	s.gizmo.Render(canvas, s.camera)
	if x, y, _, ok := s.camera.Project(s.cursor, canvas.SubWidth(), canvas.SubHeight()); ok {
		canvas.DrawLine(x-2, y, x+2, y, string(theme.Accent))
		canvas.DrawLine(x, y-2, x, y+2, string(theme.Accent))
	}

	state := StatusPaused.Render("paused")
	if s.running {
		state = StatusRunning.Render("running")
	}
	name := s.Scene()
	if name == "" {
		name = "empty"
	}
	header := GradientText("TRUSSLAB", theme.Primary, theme.Secondary) + "  " + theme.accent().Render(name) + "  " + state +
		"  " + MetricLabel.Render(fmt.Sprintf("t=%.2fs", s.sim.Time()))

	view := lipgloss.JoinHorizontal(lipgloss.Top, canvas.Render(), s.viewPanel(theme))
	status := theme.muted().Render(s.status.Last())
	return header + "\n" + view + "\n" + status
}

func (s Sandbox) viewPanel(theme Theme) string {
	var b strings.Builder
	inner := panelWidth - 4
	line := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-9s", label)) + MetricValue.Render(value) + "\n")
	}

	line("nodes", fmt.Sprintf("%d", s.mgr.NodeCount()))
	line("beams", fmt.Sprintf("%d", s.mgr.BeamCount()))
	line("cursor", fmt.Sprintf("%.1f %.1f %.1f", s.cursor.X, s.cursor.Y, s.cursor.Z))
	line("util", fmt.Sprintf("%.2f", s.util.Value()))
	b.WriteString(UtilizationBar(s.util.Value(), inner) + "\n")
	b.WriteString(Separator(inner) + "\n")

	if len(s.energy) > 1 {
		b.WriteString(asciigraph.Plot(s.energy, asciigraph.Height(4), asciigraph.Width(inner-8), asciigraph.Caption("kinetic energy")) + "\n")
	}
	b.WriteString(MetricLabel.Render("stress ") + SparklineChart(s.stress, inner-7) + "\n")
	b.WriteString(Separator(inner) + "\n")

	for _, l := range s.selectionLines() {
		b.WriteString(l + "\n")
	}
	if len(s.report) > 0 {
		b.WriteString(Separator(inner) + "\n")
		for i, l := range s.report {
			if i == reportLines {
				b.WriteString(Subtle.Render(fmt.Sprintf("... %d more", len(s.report)-reportLines)) + "\n")
				break
			}
			b.WriteString(l + "\n")
		}
	}
	b.WriteString(KeyHint.Render("? help  space run  q quit"))
	return Panel.BorderForeground(theme.Muted).Width(panelWidth).Render(b.String())
}

func (s Sandbox) selectionLines() []string {
	unit := s.cfg.Unit
	var out []string
	for _, n := range s.mgr.SelectedNodes() {
		p, f := n.Position(), n.Force()
		kind := "free"
		if n.IsFixed() {
			kind = "fixed"
		}
		out = append(out,
			fmt.Sprintf("node #%d [%d] %s", n.ID, n.SelectedIndex(), kind),
			fmt.Sprintf("  at (%.2f, %.2f, %.2f) %s", p.X, p.Y, p.Z, unit),
			fmt.Sprintf("  F  (%.2f, %.2f, %.2f)", f.X, f.Y, f.Z))
	}
	for _, b := range s.mgr.SelectedBeams() {
		out = append(out,
			fmt.Sprintf("beam #%d %s", b.ID, b.Material().Name),
			fmt.Sprintf("  %s %.2f, L=%.2f %s", b.ForceType(), b.ForceValue(), b.Length(), unit),
			"  "+UtilizationBar(b.Utilization(), 16))
	}
	if len(out) == 0 {
		out = append(out, Subtle.Render(selection.MsgNoSelection))
	}
	return out
}

func (s Sandbox) viewHelp() string {
	theme := Themes[s.theme]
	keys := [][2]string{
		{"arrows pgup/pgdn", "move cursor"},
		{"enter / c / b", "pick, multi-pick, pick beam"},
		{"n", "new node at cursor"},
		{"L", "link two selected nodes"},
		{"x", "delete selection"},
		{"f / F / 0", "toggle fixed, apply force, clear force"},
		{"m", "cycle beam material"},
		{"W A S D Q E", "move selected node"},
		{"e r g v o", "equilibrium, reactions, CoG, beams, parts"},
		{"y/Y p/P +/-", "orbit and zoom"},
		{"space", "run or pause"},
		{"tab / R", "next scene, reload scene"},
		{"t", "cycle theme"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString("\n  " + theme.title().Render("KEYS") + "\n\n")
	for _, k := range keys {
		b.WriteString("  " + theme.accent().Render(fmt.Sprintf("%-18s", k[0])) + theme.muted().Render(k[1]) + "\n")
	}
	return b.String()
}
