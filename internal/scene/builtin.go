package scene

import (
	"math"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// kit keeps the first error so builders read as straight-line code.
type kit struct {
	m   *structure.Manager
	err error
}

func (k *kit) node(x, y, z float64) *structure.Node {
	if k.err != nil {
		return nil
	}
	n, err := k.m.CreateNode(r3.Vec{X: x, Y: y, Z: z})
	k.err = err
	return n
}

func (k *kit) fixed(x, y, z float64) *structure.Node {
	n := k.node(x, y, z)
	if n != nil {
		n.SetFixed(true)
	}
	return n
}

func (k *kit) beam(a, b *structure.Node) {
	if k.err != nil {
		return
	}
	_, k.err = k.m.CreateBeam(a, b)
}

func (k *kit) chain(nodes ...*structure.Node) {
	for i := 1; i < len(nodes); i++ {
		k.beam(nodes[i-1], nodes[i])
	}
}

func (k *kit) load(n *structure.Node, f r3.Vec) {
	if n != nil {
		n.SetForce(f)
	}
}

func buildPair(m *structure.Manager) error {
	k := &kit{m: m}
	a := k.node(0, 0, 0)
	b := k.node(1, 0, 0)
	k.beam(a, b)
	k.load(a, r3.Vec{X: 5})
	k.load(b, r3.Vec{X: -5})
	return k.err
}

func buildTriangle(m *structure.Manager) error {
	k := &kit{m: m}
	left := k.fixed(-1, 0, 0)
	right := k.fixed(1, 0, 0)
	apex := k.node(0, math.Sqrt(3), 0)
	k.chain(left, right, apex, left)
	k.load(apex, r3.Vec{Y: -10})
	return k.err
}

func buildCantilever(m *structure.Manager) error {
	const bays = 3
	k := &kit{m: m}
	bottom := []*structure.Node{k.fixed(-2, 0, 0)}
	top := []*structure.Node{k.fixed(-2, 1, 0)}
	for i := 1; i <= bays; i++ {
		x := float64(i) - 2
		bottom = append(bottom, k.node(x, 0, 0))
		top = append(top, k.node(x, 1, 0))
	}
	k.chain(bottom...)
	k.chain(top...)
	for i := 1; i <= bays; i++ {
		k.beam(bottom[i], top[i])
		k.beam(top[i-1], bottom[i])
	}
	k.load(bottom[bays], r3.Vec{Y: -20})
	return k.err
}

func buildBridge(m *structure.Manager) error {
	const bays = 4
	k := &kit{m: m}
	bottom := make([]*structure.Node, bays+1)
	for i := range bottom {
		x := float64(i) - bays/2
		if i == 0 || i == bays {
			bottom[i] = k.fixed(x, 0, 0)
		} else {
			bottom[i] = k.node(x, 0, 0)
		}
	}
	top := make([]*structure.Node, bays-1)
	for i := range top {
		top[i] = k.node(float64(i+1)-bays/2, 1, 0)
	}

	k.chain(bottom...)
	k.chain(top...)
	k.beam(bottom[0], top[0])
	k.beam(top[len(top)-1], bottom[bays])
	for i, t := range top {
		k.beam(t, bottom[i+1])
		// Pratt diagonals slope down towards mid-span.
		if i+1 < bays/2 {
			k.beam(t, bottom[i+2])
		} else if i+1 > bays/2 {
			k.beam(t, bottom[i])
		}
	}
	for i := 1; i < bays; i++ {
		k.load(bottom[i], r3.Vec{Y: -10})
	}
	return k.err
}

func buildTower(m *structure.Manager) error {
	const storeys = 3
	corners := [4][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	k := &kit{m: m}

	var below [4]*structure.Node
	for c, xz := range corners {
		below[c] = k.fixed(xz[0], 0, xz[1])
	}
	for s := 1; s <= storeys; s++ {
		var level [4]*structure.Node
		for c, xz := range corners {
			level[c] = k.node(xz[0], float64(s), xz[1])
		}
		for c := range corners {
			next := (c + 1) % len(corners)
			k.beam(below[c], level[c])
			k.beam(level[c], level[next])
			k.beam(below[c], level[next])
		}
		below = level
	}
	k.load(below[0], r3.Vec{X: 2})
	k.load(below[3], r3.Vec{X: 2})
	return k.err
}
