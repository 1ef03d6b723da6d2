package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/scene"
)

const (
	stateMenu = iota
	stateSandbox
)

// app is the scene picker in front of the sandbox.
type app struct {
	state   int
	cursor  int
	scenes  []string
	info    *scene.Registry
	cfg     *config.Config
	logger  *slog.Logger
	sandbox Sandbox
	err     error
}

func NewApp(cfg *config.Config, logger *slog.Logger) *app {
	reg := scene.NewRegistry()
	return &app{
		scenes: append([]string{"empty"}, reg.List()...),
		info:   reg,
		cfg:    cfg,
		logger: logger,
	}
}

func (a app) Init() tea.Cmd { return nil }

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSandbox {
		m, cmd := a.sandbox.Update(msg)
		a.sandbox = m.(Sandbox)
		return a, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.scenes)-1 {
			a.cursor++
		}
	case "enter", " ":
		return a.start()
	}
	return a, nil
}

func (a app) start() (tea.Model, tea.Cmd) {
	cfg := *a.cfg
	cfg.Scene = a.scenes[a.cursor]
	if cfg.Scene == "empty" {
		cfg.Scene = ""
	}
	sb, err := NewSandbox(&cfg, a.logger)
	if err != nil {
		a.err = err
		return a, nil
	}
	a.sandbox, a.state = sb, stateSandbox
	return a, sb.Init()
}

func (a app) View() string {
	if a.state == stateSandbox {
		return a.sandbox.View()
	}
	theme := Themes[0]
	var b strings.Builder
	b.WriteString("\n\n    " + theme.title().Render("TRUSSLAB") + "\n    " + Subtle.Render("structure sandbox") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range a.scenes {
		desc := a.info.Describe(name)
		if name == "empty" {
			desc = "blank world"
		}
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", theme.accent().Render("▸"), theme.title().Render(fmt.Sprintf("%-12s", name)), MetricValue.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", MetricLabel.Render(fmt.Sprintf("%-12s", name)), Subtle.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + BandFailed.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the scene picker.
func RunInteractive(cfg *config.Config, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewApp(cfg, logger), tea.WithAltScreen()).Run()
	return err
}

// RunSandbox skips the picker and opens cfg.Scene directly.
func RunSandbox(cfg *config.Config, logger *slog.Logger) error {
	sb, err := NewSandbox(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(sb, tea.WithAltScreen()).Run()
	return err
}
