package integrators

import (
	"math"

	"github.com/san-kum/trusslab/internal/physics"
)

// Dormand-Prince tableau.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince embedded pair. Step runs one step of the
// requested size; StepAdaptive also suggests the next step size.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(sys physics.System, x physics.State, t, dt float64) physics.State {
	newX, _, _ := r.StepAdaptive(sys, x, t, dt, 1e-6)
	return newX
}

func (r *RK45) StepAdaptive(sys physics.System, x physics.State, t, dt, tol float64) (physics.State, float64, error) {
	n := len(x)

	k1 := sys.Derive(x, t)
	k2 := sys.Derive(combine(x, dt, []physics.State{k1}, []float64{b21}), t+a2*dt)
	k3 := sys.Derive(combine(x, dt, []physics.State{k1, k2}, []float64{b31, b32}), t+a3*dt)
	k4 := sys.Derive(combine(x, dt, []physics.State{k1, k2, k3}, []float64{b41, b42, b43}), t+a4*dt)
	k5 := sys.Derive(combine(x, dt, []physics.State{k1, k2, k3, k4}, []float64{b51, b52, b53, b54}), t+a5*dt)
	k6 := sys.Derive(combine(x, dt, []physics.State{k1, k2, k3, k4, k5}, []float64{b61, b62, b63, b64, b65}), t+dt)
	xNew := combine(x, dt, []physics.State{k1, k3, k4, k5, k6}, []float64{c1, c3, c4, c5, c6})

	k7 := sys.Derive(xNew, t+dt)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	errRatio := errMax / tol

	switch {
	case !xNew.IsValid():
		return xNew, dt * r.minScale, physics.ErrUnstable
	case errRatio > 1:
		return xNew, dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25)), nil
	case errRatio > 0:
		return xNew, dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2)), nil
	default:
		return xNew, dt * r.maxScale, nil
	}
}

// combine returns x + dt*sum(w[i]*k[i]).
func combine(x physics.State, dt float64, k []physics.State, w []float64) physics.State {
	out := x.Clone()
	for j, kj := range k {
		for i := range out {
			out[i] += dt * w[j] * kj[i]
		}
	}
	return out
}
