package integrators

import "github.com/san-kum/trusslab/internal/physics"

// Verlet is velocity Verlet. The state must hold positions in its first
// half and velocities in the second, which is the spring model layout.
type Verlet struct {
	scratch physics.State
}

func NewVerlet() *Verlet { return &Verlet{} }

func (v *Verlet) Step(sys physics.System, x physics.State, t, dt float64) physics.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(physics.State, n)
	}

	out := make(physics.State, n)
	dx := sys.Derive(x, t)
	for i := 0; i < half; i++ {
		out[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt*dt
		v.scratch[i] = out[i]
		v.scratch[half+i] = x[half+i]
	}

	// Damping makes acceleration velocity dependent; the new acceleration
	// uses the old velocity, which keeps the step explicit.
	dxNew := sys.Derive(v.scratch, t+dt)
	for i := 0; i < half; i++ {
		out[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*dt/2
	}
	return out
}
