package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/selection"
)

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(t *testing.T, s Sandbox, msgs ...tea.Msg) Sandbox {
	t.Helper()
	for _, msg := range msgs {
		m, _ := s.Update(msg)
		s = m.(Sandbox)
	}
	return s
}

func newSandbox(t *testing.T, sceneName string) Sandbox {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Scene = sceneName
	s, err := NewSandbox(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewSandboxUnknownScene(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scene = "castle"
	if _, err := NewSandbox(cfg, nil); err == nil {
		t.Error("expected error for unknown scene")
	}
}

func TestNewSandboxInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WorldSize = 0
	if _, err := NewSandbox(cfg, nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestSandboxBuildAndDelete(t *testing.T) {
	s := newSandbox(t, "")
	if s.Manager().NodeCount() != 0 {
		t.Fatalf("expected empty world, got %d nodes", s.Manager().NodeCount())
	}

	s = press(t, s, keys("n"))
	if s.Status() != selection.MsgMoveNode {
		t.Errorf("expected %q, got %q", selection.MsgMoveNode, s.Status())
	}

	right := tea.KeyMsg{Type: tea.KeyRight}
	left := tea.KeyMsg{Type: tea.KeyLeft}
	s = press(t, s, right, right, right, right, keys("n"))
	if s.Cursor().X != 2 {
		t.Fatalf("expected cursor at x=2, got %v", s.Cursor())
	}
	if s.Manager().NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", s.Manager().NodeCount())
	}

	s = press(t, s, left, left, left, left, keys("c"))
	if s.Status() != selection.MsgConnection {
		t.Fatalf("expected %q, got %q", selection.MsgConnection, s.Status())
	}

	s = press(t, s, keys("L"))
	if s.Manager().BeamCount() != 1 {
		t.Fatalf("expected 1 beam, got %d", s.Manager().BeamCount())
	}

	s = press(t, s, keys("x"))
	if s.Manager().NodeCount() != 0 || s.Manager().BeamCount() != 0 {
		t.Errorf("expected empty world, got %d nodes %d beams", s.Manager().NodeCount(), s.Manager().BeamCount())
	}
	if s.Status() != "Deleted 2 node(s), 1 beam(s)" {
		t.Errorf("unexpected status %q", s.Status())
	}
}

func TestSandboxMoveNode(t *testing.T) {
	s := newSandbox(t, "")
	s = press(t, s, keys("n"), keys("W"), keys("W"))
	n := s.Manager().SelectedNodes()[0]
	if got := n.Position().Y; got < 0.199 || got > 0.201 {
		t.Errorf("expected node at y=0.2, got %f", got)
	}
}

func TestSandboxEmptyPickClears(t *testing.T) {
	s := newSandbox(t, "")
	s = press(t, s, keys("n"), tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if s.Status() != selection.MsgNoSelection {
		t.Errorf("expected %q, got %q", selection.MsgNoSelection, s.Status())
	}
	if len(s.Manager().SelectedNodes()) != 0 {
		t.Error("expected selection cleared")
	}
}

func TestSandboxScenes(t *testing.T) {
	s := newSandbox(t, "triangle")
	if s.Scene() != "triangle" || s.Manager().NodeCount() != 3 {
		t.Fatalf("expected triangle with 3 nodes, got %s with %d", s.Scene(), s.Manager().NodeCount())
	}

	s = press(t, s, tea.KeyMsg{Type: tea.KeyTab})
	if s.Scene() == "triangle" {
		t.Error("expected tab to switch scene")
	}

	s = press(t, s, keys("x"), keys("R"))
	if s.Manager().NodeCount() == 0 {
		t.Error("expected reload to rebuild the scene")
	}
}

func TestSandboxRunsOnTick(t *testing.T) {
	s := newSandbox(t, "pair")
	tick := TickMsg(time.Now())

	s = press(t, s, tick)
	if s.sim.Time() != 0 {
		t.Fatalf("expected paused sandbox to hold time, got %f", s.sim.Time())
	}

	s = press(t, s, tea.KeyMsg{Type: tea.KeySpace}, tick, tick, tick)
	if !s.Running() {
		t.Fatal("expected sandbox to run")
	}
	if s.sim.Frames() != 3 {
		t.Errorf("expected 3 frames, got %d", s.sim.Frames())
	}
	if len(s.energy) != 3 || len(s.stress) != 3 {
		t.Errorf("expected 3 history samples, got %d and %d", len(s.energy), len(s.stress))
	}
}

func TestSandboxReports(t *testing.T) {
	s := newSandbox(t, "triangle")

	s = press(t, s, keys("e"))
	if want := s.engine.CheckEquilibrium().Message(); len(s.Report()) == 0 || s.Report()[0] != want {
		t.Errorf("expected %q, got %v", want, s.Report())
	}

	s = press(t, s, keys("v"))
	if len(s.Report()) != s.Manager().BeamCount() {
		t.Errorf("expected one line per beam, got %d", len(s.Report()))
	}

	s = press(t, s, keys("o"))
	if !strings.HasPrefix(s.Report()[0], "1 part(s)") {
		t.Errorf("unexpected connectivity report %q", s.Report()[0])
	}

	s = press(t, s, keys("r"))
	if !strings.HasPrefix(s.Report()[0], "reaction") {
		t.Errorf("unexpected reaction report %q", s.Report()[0])
	}
}

func TestSandboxView(t *testing.T) {
	s := newSandbox(t, "bridge")
	view := s.View()
	if !strings.Contains(view, "bridge") {
		t.Error("expected scene name in view")
	}

	s = press(t, s, keys("?"))
	if !strings.Contains(s.View(), "KEYS") {
		t.Error("expected help view")
	}

	_, cmd := s.Update(keys("q"))
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestAppStartsSandbox(t *testing.T) {
	a := NewApp(config.DefaultConfig(), nil)
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := m.(app)
	if got.state != stateSandbox {
		t.Fatalf("expected sandbox state, err=%v", got.err)
	}
	if cmd == nil {
		t.Error("expected tick command")
	}
	if got.sandbox.Scene() != got.scenes[1] {
		t.Errorf("expected scene %s, got %s", got.scenes[1], got.sandbox.Scene())
	}
}
