package physics

import (
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// springSystem treats every beam as a Hookean spring at its rest length.
// State layout: [x0 y0 z0 x1 ... | vx0 vy0 vz0 vx1 ...] over free nodes,
// so position-first integrators such as Verlet can split it in half.
type springSystem struct {
	free      []*structure.Node
	index     map[*structure.Node]int
	beams     []*structure.Beam
	stiffness float64
	damping   float64
}

func newSpringSystem(m *structure.Manager, stiffness, damping float64) *springSystem {
	free := m.FreeNodes()
	index := make(map[*structure.Node]int, len(free))
	for i, n := range free {
		index[n] = i
	}
	return &springSystem{
		free:      free,
		index:     index,
		beams:     m.Beams(),
		stiffness: stiffness,
		damping:   damping,
	}
}

func (s *springSystem) StateDim() int { return len(s.free) * 6 }

func (s *springSystem) state() State {
	n := len(s.free)
	x := make(State, n*6)
	for i, node := range s.free {
		p, v := node.Position(), node.Velocity()
		x[i*3], x[i*3+1], x[i*3+2] = p.X, p.Y, p.Z
		x[3*n+i*3], x[3*n+i*3+1], x[3*n+i*3+2] = v.X, v.Y, v.Z
	}
	return x
}

func (s *springSystem) position(x State, node *structure.Node) r3.Vec {
	i, ok := s.index[node]
	if !ok {
		return node.Position()
	}
	return r3.Vec{X: x[i*3], Y: x[i*3+1], Z: x[i*3+2]}
}

func (s *springSystem) Derive(x State, _ float64) State {
	n := len(s.free)
	dx := make(State, n*6)
	copy(dx[:3*n], x[3*n:])

	forces := make([]r3.Vec, n)
	for i, node := range s.free {
		v := r3.Vec{X: x[3*n+i*3], Y: x[3*n+i*3+1], Z: x[3*n+i*3+2]}
		forces[i] = r3.Sub(node.Force(), r3.Scale(s.damping, v))
	}

	for _, b := range s.beams {
		pa := s.position(x, b.Start())
		pb := s.position(x, b.End())
		d := r3.Sub(pb, pa)
		l := r3.Norm(d)
		if l == 0 {
			continue
		}
		f := r3.Scale(s.stiffness*(l-b.RestLength())/l, d)
		if i, ok := s.index[b.Start()]; ok {
			forces[i] = r3.Add(forces[i], f)
		}
		if i, ok := s.index[b.End()]; ok {
			forces[i] = r3.Sub(forces[i], f)
		}
	}

	for i, node := range s.free {
		a := r3.Scale(1/node.Mass(), forces[i])
		dx[3*n+i*3], dx[3*n+i*3+1], dx[3*n+i*3+2] = a.X, a.Y, a.Z
	}
	return dx
}

// apply writes an integrated state back into the nodes.
func (s *springSystem) apply(x State, world structure.World, t float64) {
	n := len(s.free)
	dx := s.Derive(x, t)
	for i, node := range s.free {
		p := world.Clamp(r3.Vec{X: x[i*3], Y: x[i*3+1], Z: x[i*3+2]})
		v := r3.Vec{X: x[3*n+i*3], Y: x[3*n+i*3+1], Z: x[3*n+i*3+2]}
		a := r3.Vec{X: dx[3*n+i*3], Y: dx[3*n+i*3+1], Z: dx[3*n+i*3+2]}
		node.MoveTo(p)
		node.SetMotion(v, a)
	}
}
