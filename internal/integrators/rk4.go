package integrators

import "github.com/san-kum/trusslab/internal/physics"

// RK4 is the classic fourth-order Runge-Kutta method. Stage buffers are
// reused between steps while the state size is unchanged.
type RK4 struct {
	k1, k2, k3, k4 physics.State
	scratch        physics.State
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) == n {
		return
	}
	r.k1 = make(physics.State, n)
	r.k2 = make(physics.State, n)
	r.k3 = make(physics.State, n)
	r.k4 = make(physics.State, n)
	r.scratch = make(physics.State, n)
}

func (r *RK4) stage(sys physics.System, x, k physics.State, scale, t float64, dst physics.State) {
	for i := range x {
		r.scratch[i] = x[i] + scale*k[i]
	}
	copy(dst, sys.Derive(r.scratch, t))
}

func (r *RK4) Step(sys physics.System, x physics.State, t, dt float64) physics.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, t))
	r.stage(sys, x, r.k1, dt/2, t+dt/2, r.k2)
	r.stage(sys, x, r.k2, dt/2, t+dt/2, r.k3)
	r.stage(sys, x, r.k3, dt, t+dt, r.k4)

	out := make(physics.State, n)
	dt6 := dt / 6
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return out
}
