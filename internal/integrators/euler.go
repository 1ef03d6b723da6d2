// Package integrators provides fixed-step ODE integrators for the spring
// beam model.
package integrators

import "github.com/san-kum/trusslab/internal/physics"

// Euler is the explicit first-order method. It gains energy on stiff
// springs and is mainly useful as a reference.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(sys physics.System, x physics.State, t, dt float64) physics.State {
	dx := sys.Derive(x, t)
	out := make(physics.State, len(x))
	for i := range x {
		out[i] = x[i] + dt*dx[i]
	}
	return out
}

// SemiImplicitEuler updates velocities first and moves positions with the
// new velocities. The state must hold positions in its first half.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler { return &SemiImplicitEuler{} }

func (e *SemiImplicitEuler) Step(sys physics.System, x physics.State, t, dt float64) physics.State {
	half := len(x) / 2
	dx := sys.Derive(x, t)
	out := make(physics.State, len(x))
	for i := 0; i < half; i++ {
		out[half+i] = x[half+i] + dt*dx[half+i]
		out[i] = x[i] + dt*out[half+i]
	}
	return out
}
