package analysis

import (
	"fmt"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// Reaction is the outcome of a reaction solve.
type Reaction struct {
	// NetFree is the summed force on the free nodes.
	NetFree    r3.Vec
	Force      r3.Vec
	PerNode    r3.Vec
	FixedCount int
}

func (r Reaction) String() string {
	return fmt.Sprintf("reaction (%.2f, %.2f, %.2f) over %d support(s), (%.2f, %.2f, %.2f) each",
		r.Force.X, r.Force.Y, r.Force.Z, r.FixedCount, r.PerNode.X, r.PerNode.Y, r.PerNode.Z)
}

// CalculateMissingForces balances the free-node load with an equal share
// on every fixed node, applied through SetForce.
func (e *Engine) CalculateMissingForces() (Reaction, error) {
	fixed := e.mgr.FixedNodes()
	if len(fixed) == 0 {
		return Reaction{}, ErrNoFixedNodes
	}
	var net r3.Vec
	for _, n := range e.mgr.FreeNodes() {
		net = r3.Add(net, n.Force())
	}
	reaction := r3.Scale(-1, net)
	per := r3.Scale(1/float64(len(fixed)), reaction)
	for _, n := range fixed {
		n.SetForce(per)
	}
	return Reaction{NetFree: net, Force: reaction, PerNode: per, FixedCount: len(fixed)}, nil
}

// BeamForce summarises one beam after classification.
type BeamForce struct {
	Beam        *structure.Beam
	Type        structure.ForceType
	Value       float64
	Stress      float64
	Strain      float64
	Utilization float64
}

func (b BeamForce) String() string {
	return fmt.Sprintf("%s %s %.2f (stress %.3g, strain %.3g)", b.Beam, b.Type, b.Value, b.Stress, b.Strain)
}

// CalculateBeamForces reclassifies every beam and returns the results in
// insertion order.
func (e *Engine) CalculateBeamForces() []BeamForce {
	beams := e.mgr.Beams()
	out := make([]BeamForce, 0, len(beams))
	for _, b := range beams {
		b.CalculateForce()
		out = append(out, BeamForce{
			Beam:        b,
			Type:        b.ForceType(),
			Value:       b.ForceValue(),
			Stress:      b.Stress(),
			Strain:      b.Strain(),
			Utilization: b.Utilization(),
		})
	}
	return out
}
