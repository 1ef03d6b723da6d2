package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

func newStructure(t *testing.T) (*structure.Manager, *structure.Node, *structure.Node, *structure.Beam) {
	t.Helper()
	m := structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
	a, err := m.CreateNode(r3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.CreateNode(r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	beam, err := m.CreateBeam(a, b)
	if err != nil {
		t.Fatal(err)
	}
	return m, a, b, beam
}

func TestKineticEnergy(t *testing.T) {
	m, a, b, _ := newStructure(t)
	a.SetMotion(r3.Vec{X: 1}, r3.Vec{})
	b.SetMotion(r3.Vec{Y: 2}, r3.Vec{})

	expected := 0.5*100*1 + 0.5*100*4
	if got := KineticEnergyOf(m); math.Abs(got-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}

	k := NewKineticEnergy()
	k.Observe(m, 0)
	b.SetMotion(r3.Vec{}, r3.Vec{})
	k.Observe(m, 1)
	if mean := (expected + 50) / 2; math.Abs(k.Value()-mean) > 1e-9 {
		t.Errorf("expected mean %f, got %f", mean, k.Value())
	}

	k.Reset()
	if k.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", k.Value())
	}
}

func TestPeakStress(t *testing.T) {
	m, a, b, beam := newStructure(t)
	p := NewPeakStress()
	p.Observe(m, 0)
	if p.Value() != 0 {
		t.Errorf("expected no stress on an unloaded beam, got %f", p.Value())
	}

	a.SetForce(r3.Vec{X: 5})
	b.SetForce(r3.Vec{X: -5})
	beam.CalculateForce()
	p.Observe(m, 1)

	a.SetForce(r3.Vec{})
	b.SetForce(r3.Vec{})
	beam.CalculateForce()
	p.Observe(m, 2)

	want := 5 / beam.CrossSectionArea()
	if math.Abs(p.Value()-want) > 1e-6 {
		t.Errorf("expected peak %f, got %f", want, p.Value())
	}
	if now := PeakStressOf(m); now != 0 {
		t.Errorf("expected current stress to have dropped, got %f", now)
	}
}

func TestMaxUtilization(t *testing.T) {
	m, a, b, beam := newStructure(t)
	a.SetForce(r3.Vec{X: 5})
	b.SetForce(r3.Vec{X: -5})
	beam.CalculateForce()

	u := NewMaxUtilization()
	u.Observe(m, 0)
	if math.Abs(u.Value()-beam.Utilization()) > 1e-12 {
		t.Errorf("expected %f, got %f", beam.Utilization(), u.Value())
	}
	u.Reset()
	if u.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", u.Value())
	}
}

func TestRestTime(t *testing.T) {
	m, a, b, _ := newStructure(t)
	a.SetFixed(true)
	a.SetMotion(r3.Vec{X: 1}, r3.Vec{})
	b.SetMotion(r3.Vec{X: 1}, r3.Vec{})

	r := NewRestTime()
	r.Observe(m, 0)
	if r.Value() != -1 {
		t.Errorf("expected -1 while moving, got %f", r.Value())
	}

	// Fixed nodes do not count.
	b.SetMotion(r3.Vec{}, r3.Vec{})
	r.Observe(m, 0.5)
	if r.Value() != 0.5 {
		t.Errorf("expected rest at 0.5, got %f", r.Value())
	}

	b.SetMotion(r3.Vec{X: 1}, r3.Vec{})
	r.Observe(m, 1)
	if r.Value() != 0.5 {
		t.Errorf("expected first rest time to stick, got %f", r.Value())
	}

	r.Reset()
	if r.Value() != -1 {
		t.Errorf("expected -1 after reset, got %f", r.Value())
	}
}
