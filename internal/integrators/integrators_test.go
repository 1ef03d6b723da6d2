package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/trusslab/internal/physics"
)

// oscillator is a unit mass on a unit spring: x'' = -x.
type oscillator struct{}

func (o *oscillator) StateDim() int { return 2 }

func (o *oscillator) Derive(x physics.State, t float64) physics.State {
	return physics.State{x[1], -x[0]}
}

func energy(x physics.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func run(integ physics.Integrator, steps int, dt float64) physics.State {
	x := physics.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&oscillator{}, x, float64(i)*dt, dt)
	}
	return x
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		integ physics.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 1e-2},
		{"symplectic", NewSemiImplicitEuler(), 1e-2},
		{"rk4", NewRK4(), 1e-6},
		{"rk45", NewRK45(), 1e-6},
		{"verlet", NewVerlet(), 1e-4},
	}

	dt := 0.01
	steps := 100
	wantX := math.Cos(float64(steps) * dt)
	wantV := -math.Sin(float64(steps) * dt)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := run(tt.integ, steps, dt)
			if math.Abs(x[0]-wantX) > tt.tol {
				t.Errorf("position error too large: got %.6f, expected %.6f", x[0], wantX)
			}
			if math.Abs(x[1]-wantV) > tt.tol {
				t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], wantV)
			}
		})
	}
}

func TestVerletBoundedEnergy(t *testing.T) {
	x := run(NewVerlet(), 10000, 0.01)
	drift := math.Abs(energy(x)-0.5) / 0.5
	if drift > 1e-3 {
		t.Errorf("verlet energy drift too high: %e", drift)
	}
}

func TestEulerGainsEnergy(t *testing.T) {
	x := run(NewEuler(), 1000, 0.01)
	if energy(x) <= 0.5 {
		t.Errorf("expected explicit euler to gain energy, got %.6f", energy(x))
	}
}

func TestRK45AdaptiveStep(t *testing.T) {
	x, next, err := NewRK45().StepAdaptive(&oscillator{}, physics.State{1, 0}, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if next <= 0 {
		t.Errorf("expected positive dt, got %f", next)
	}
}

func TestRK4ResizesScratch(t *testing.T) {
	integ := NewRK4()
	integ.Step(&oscillator{}, physics.State{1, 0}, 0, 0.01)

	wide := &wideOscillator{}
	x := integ.Step(wide, physics.State{1, 2, 0, 0}, 0, 0.01)
	if len(x) != 4 {
		t.Fatalf("expected 4 components, got %d", len(x))
	}
}

type wideOscillator struct{}

func (w *wideOscillator) StateDim() int { return 4 }

func (w *wideOscillator) Derive(x physics.State, t float64) physics.State {
	return physics.State{x[2], x[3], -x[0], -x[1]}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		integ, err := ByName(name)
		if err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
		if integ == nil {
			t.Errorf("ByName(%q) returned nil", name)
		}
	}
	if _, err := ByName("RK4"); err != nil {
		t.Errorf("expected case-insensitive lookup, got %v", err)
	}
	if _, err := ByName("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func BenchmarkRK4(b *testing.B) {
	integ := NewRK4()
	x := physics.State{1.0, 0.0}
	for i := 0; i < b.N; i++ {
		x = integ.Step(&oscillator{}, x, 0, 0.01)
	}
}

func BenchmarkVerlet(b *testing.B) {
	integ := NewVerlet()
	x := physics.State{1.0, 0.0}
	for i := 0; i < b.N; i++ {
		x = integ.Step(&oscillator{}, x, 0, 0.01)
	}
}
