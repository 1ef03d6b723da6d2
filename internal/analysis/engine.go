package analysis

import (
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance bounds |net force| and |net moment| for equilibrium.
const DefaultTolerance = 0.01

const (
	MsgInEquilibrium    = "System IS in equilibrium"
	MsgNotInEquilibrium = "System IS NOT in equilibrium"
)

// Engine runs analyses over the current state of a manager. It holds no
// state of its own between calls.
type Engine struct {
	mgr       *structure.Manager
	tolerance float64
}

// New returns an engine. A non-positive tolerance selects DefaultTolerance.
func New(mgr *structure.Manager, tolerance float64) *Engine {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Engine{mgr: mgr, tolerance: tolerance}
}

func (e *Engine) Tolerance() float64 { return e.tolerance }

// CenterOfGravity returns the mass-weighted mean position and the total
// mass. Both are zero when there are no nodes.
func (e *Engine) CenterOfGravity() (r3.Vec, float64) {
	var weighted r3.Vec
	total := 0.0
	for _, n := range e.mgr.Nodes() {
		weighted = r3.Add(weighted, r3.Scale(n.Mass(), n.Position()))
		total += n.Mass()
	}
	if total == 0 {
		return r3.Vec{}, 0
	}
	return r3.Scale(1/total, weighted), total
}

type Equilibrium struct {
	NetForce        r3.Vec
	NetMoment       r3.Vec
	CenterOfGravity r3.Vec
	TotalMass       float64
	InEquilibrium   bool
}

func (q Equilibrium) Message() string {
	if q.InEquilibrium {
		return MsgInEquilibrium
	}
	return MsgNotInEquilibrium
}

// CheckEquilibrium sums node forces and their moments about the centre
// of gravity.
func (e *Engine) CheckEquilibrium() Equilibrium {
	cog, total := e.CenterOfGravity()
	var force, moment r3.Vec
	for _, n := range e.mgr.Nodes() {
		f := n.Force()
		force = r3.Add(force, f)
		moment = r3.Add(moment, r3.Cross(r3.Sub(n.Position(), cog), f))
	}
	return Equilibrium{
		NetForce:        force,
		NetMoment:       moment,
		CenterOfGravity: cog,
		TotalMass:       total,
		InEquilibrium:   r3.Norm(force) < e.tolerance && r3.Norm(moment) < e.tolerance,
	}
}
