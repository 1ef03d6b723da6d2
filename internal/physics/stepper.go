package physics

import (
	"fmt"
	"strings"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// Model selects how beams act on nodes.
type Model int

const (
	Snapshot Model = iota
	Spring
)

func (m Model) String() string {
	if m == Spring {
		return "spring"
	}
	return "snapshot"
}

func ParseModel(name string) (Model, error) {
	switch strings.ToLower(name) {
	case "", "snapshot":
		return Snapshot, nil
	case "spring":
		return Spring, nil
	default:
		return Snapshot, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}

const (
	DefaultStiffness = 500.0
	DefaultDamping   = 20.0
)

type Settings struct {
	World     structure.World
	Model     Model
	Stiffness float64
	Damping   float64
	MoveNodes bool
}

func DefaultSettings() Settings {
	return Settings{
		World:     structure.DefaultWorld(),
		Model:     Snapshot,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
		MoveNodes: true,
	}
}

// Stepper performs the per-frame update of a structure.
type Stepper struct {
	settings   Settings
	integrator Integrator
	t          float64
}

// NewStepper builds a stepper. The integrator is only used by the spring
// model and may be nil otherwise.
func NewStepper(settings Settings, integrator Integrator) (*Stepper, error) {
	if settings.Model == Spring && integrator == nil {
		return nil, ErrNoIntegrator
	}
	return &Stepper{settings: settings, integrator: integrator}, nil
}

func (s *Stepper) Settings() Settings { return s.settings }
func (s *Stepper) Time() float64      { return s.t }

// Step advances the structure by dt. External forces for the frame must be
// set before Step; beams are updated last so they see the final node state.
func (s *Stepper) Step(m *structure.Manager, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidStep, dt)
	}
	var err error
	switch s.settings.Model {
	case Spring:
		err = s.stepSpring(m, dt)
	default:
		s.stepSnapshot(m, dt)
	}
	s.t += dt
	return err
}

func (s *Stepper) stepSnapshot(m *structure.Manager, dt float64) {
	m.UpdateAllNodes(dt)
	if s.settings.MoveNodes {
		for _, n := range m.FreeNodes() {
			v := n.Velocity()
			if v == (r3.Vec{}) {
				continue
			}
			n.MoveTo(s.settings.World.Clamp(r3.Add(n.Position(), r3.Scale(dt, v))))
		}
	}
	m.UpdateAllBeams(dt)
}

func (s *Stepper) stepSpring(m *structure.Manager, dt float64) error {
	for _, n := range m.Nodes() {
		n.Sync()
	}
	sys := newSpringSystem(m, s.settings.Stiffness, s.settings.Damping)
	if len(sys.free) > 0 {
		x := sys.state()
		next := s.integrator.Step(sys, x, s.t, dt)
		if !next.IsValid() {
			return fmt.Errorf("%w at t=%.4f", ErrUnstable, s.t)
		}
		sys.apply(next, s.settings.World, s.t+dt)
	}
	for _, b := range m.Beams() {
		b.UpdateSpring(s.settings.Stiffness)
	}
	return nil
}
