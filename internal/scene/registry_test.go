package scene

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/trusslab/internal/analysis"
	"github.com/san-kum/trusslab/internal/structure"
)

func newManager() *structure.Manager {
	return structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
}

func TestBuiltinScenes(t *testing.T) {
	tests := []struct {
		name     string
		nodes    int
		beams    int
		fixed    int
		floating int
	}{
		{"pair", 2, 1, 0, 2},
		{"triangle", 3, 3, 2, 0},
		{"cantilever", 8, 12, 2, 0},
		{"bridge", 8, 13, 2, 0},
		{"tower", 16, 36, 4, 0},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager()
			if err := r.Build(tt.name, m); err != nil {
				t.Fatalf("Build: %v", err)
			}
			if m.NodeCount() != tt.nodes {
				t.Errorf("expected %d nodes, got %d", tt.nodes, m.NodeCount())
			}
			if m.BeamCount() != tt.beams {
				t.Errorf("expected %d beams, got %d", tt.beams, m.BeamCount())
			}
			if got := len(m.FixedNodes()); got != tt.fixed {
				t.Errorf("expected %d fixed nodes, got %d", tt.fixed, got)
			}

			conn := analysis.New(m, 0).Connectivity()
			if !conn.Connected() {
				t.Errorf("expected one connected part, got %d", len(conn.Components))
			}
			if len(conn.Floating) != tt.floating {
				t.Errorf("expected %d floating nodes, got %d", tt.floating, len(conn.Floating))
			}
			for _, n := range m.Nodes() {
				if !m.World().Contains(n.Position()) {
					t.Errorf("node %v outside the world", n)
				}
			}
		})
	}
}

func TestReactionsBalanceLoads(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"triangle", "cantilever", "bridge", "tower"} {
		m := newManager()
		if err := r.Build(name, m); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		e := analysis.New(m, 0)
		if _, err := e.CalculateMissingForces(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		q := e.CheckEquilibrium()
		if q.NetForce.X*q.NetForce.X+q.NetForce.Y*q.NetForce.Y+q.NetForce.Z*q.NetForce.Z > 1e-12 {
			t.Errorf("%s: expected zero net force after reactions, got %v", name, q.NetForce)
		}
	}
}

func TestUnknownScene(t *testing.T) {
	err := NewRegistry().Build("arch", newManager())
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("expected ErrUnknownScene, got %v", err)
	}
}

func TestList(t *testing.T) {
	r := NewRegistry()
	want := []string{"bridge", "cantilever", "pair", "tower", "triangle"}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for _, name := range want {
		if r.Describe(name) == "" {
			t.Errorf("scene %s has no description", name)
		}
	}
}

func TestBuildReportsManagerErrors(t *testing.T) {
	r := NewRegistry()
	r.Register("dup", "duplicate beam", func(m *structure.Manager) error {
		k := &kit{m: m}
		a := k.node(0, 0, 0)
		b := k.node(1, 0, 0)
		k.beam(a, b)
		k.beam(b, a)
		return k.err
	})
	err := r.Build("dup", newManager())
	if !errors.Is(err, structure.ErrDuplicateBeam) {
		t.Errorf("expected ErrDuplicateBeam, got %v", err)
	}
}
