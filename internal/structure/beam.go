package structure

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ForceType classifies the internal force carried by a beam.
type ForceType int

const (
	Neutral ForceType = iota
	Tension
	Compression
)

func (f ForceType) String() string {
	switch f {
	case Tension:
		return "tension"
	case Compression:
		return "compression"
	default:
		return "neutral"
	}
}

// Beam connects two distinct nodes. It does not own them.
type Beam struct {
	ID int64

	start, end *Node
	length     float64
	restLength float64
	material   Material
	forceType  ForceType
	forceValue float64
	stress     float64
	strain     float64
	selected   bool
}

// NewBeam connects start to end. Its rest length is the current distance.
func NewBeam(start, end *Node, material Material) (*Beam, error) {
	if start == nil || end == nil {
		return nil, ErrNilNode
	}
	if start == end {
		return nil, fmt.Errorf("%w: node %d", ErrDegenerateBeam, start.ID)
	}
	b := &Beam{start: start, end: end, material: material}
	b.length = b.currentLength()
	b.restLength = b.length
	return b, nil
}

func (b *Beam) Start() *Node            { return b.start }
func (b *Beam) End() *Node              { return b.end }
func (b *Beam) Length() float64         { return b.length }
func (b *Beam) RestLength() float64     { return b.restLength }
func (b *Beam) Material() Material      { return b.material }
func (b *Beam) ForceType() ForceType    { return b.forceType }
func (b *Beam) ForceValue() float64     { return b.forceValue }
func (b *Beam) Stress() float64         { return b.stress }
func (b *Beam) Strain() float64         { return b.strain }
func (b *Beam) IsSelected() bool        { return b.selected }
func (b *Beam) SetSelected(sel bool)    { b.selected = sel }
func (b *Beam) References(n *Node) bool { return b.start == n || b.end == n }

// Joins reports whether the beam connects a and b in either direction.
func (b *Beam) Joins(a, c *Node) bool {
	return (b.start == a && b.end == c) || (b.start == c && b.end == a)
}

// Direction is the unit vector from start to end, zero for coincident nodes.
func (b *Beam) Direction() r3.Vec {
	return unit(r3.Sub(b.end.Position(), b.start.Position()))
}

// CrossSectionArea derives the beam section from the endpoint radii.
func (b *Beam) CrossSectionArea() float64 {
	r := (b.start.radius() + b.end.radius()) / 2
	return math.Pi * r * r
}

func (b *Beam) Update(dt float64) {
	b.length = b.currentLength()
	b.CalculateForce()
}

// CalculateForce classifies the beam from the endpoint forces projected on
// the beam axis. It is a snapshot of the forces already present on the
// nodes, not a spring reaction.
func (b *Beam) CalculateForce() {
	dir := b.Direction()
	if dir == (r3.Vec{}) {
		b.setForce(Neutral, 0)
		return
	}
	sp := r3.Dot(b.start.Force(), dir)
	ep := r3.Dot(b.end.Force(), dir)
	b.setForce(Classify(sp, ep))
}

// Classify applies the projection rule to a pair of endpoint projections.
func Classify(startProjection, endProjection float64) (ForceType, float64) {
	value := (math.Abs(startProjection) + math.Abs(endProjection)) / 2
	switch {
	case startProjection > 0 && endProjection < 0:
		return Tension, value
	case startProjection < 0 && endProjection > 0:
		return Compression, value
	default:
		return Neutral, 0
	}
}

// Extension is the current length minus the rest length.
func (b *Beam) Extension() float64 { return b.currentLength() - b.restLength }

// SpringForce is the Hookean force the beam exerts on its start node; the
// end node receives the opposite.
func (b *Beam) SpringForce(stiffness float64) r3.Vec {
	return r3.Scale(stiffness*b.Extension(), b.Direction())
}

// UpdateSpring classifies the beam from its extension, for the spring model.
func (b *Beam) UpdateSpring(stiffness float64) {
	b.length = b.currentLength()
	ext := b.length - b.restLength
	value := math.Abs(stiffness * ext)
	switch {
	case ext > 0:
		b.setForce(Tension, value)
	case ext < 0:
		b.setForce(Compression, value)
	default:
		b.setForce(Neutral, 0)
	}
}

// ResetRest makes the current length the rest length.
func (b *Beam) ResetRest() { b.restLength = b.currentLength() }

func (b *Beam) SetMaterial(name string) error {
	m, err := LookupMaterial(name)
	if err != nil {
		return err
	}
	b.material = m
	b.strain = strainOf(b.stress, m)
	return nil
}

// Utilization is stress over the strength that governs the current force
// type; values above 1 mean the beam has failed.
func (b *Beam) Utilization() float64 {
	switch b.forceType {
	case Tension:
		return ratio(b.stress, b.material.TensileStrength)
	case Compression:
		return ratio(b.stress, b.material.CompressiveStrength)
	default:
		return 0
	}
}

func ratio(stress, strength float64) float64 {
	if strength <= 0 {
		return 0
	}
	return stress / strength
}

func (b *Beam) Overstressed() bool { return b.Utilization() > 1 }

func (b *Beam) Attach(c Container) {
	if c != nil {
		c.Add(b)
	}
}

func (b *Beam) Detach(c Container) {
	if c != nil {
		c.Remove(b)
	}
}

// Color is the material colour, or the highlight when selected.
func (b *Beam) Color() string {
	if b.selected {
		return "#ffcc00"
	}
	return b.material.Color
}

// ForceColor is the cue for the force classification.
func (b *Beam) ForceColor() string {
	switch b.forceType {
	case Tension:
		return "#4488ff"
	case Compression:
		return "#ff5544"
	default:
		return b.material.Color
	}
}

func (b *Beam) String() string {
	return fmt.Sprintf("beam#%d(%d-%d)", b.ID, b.start.ID, b.end.ID)
}

func (b *Beam) setForce(t ForceType, value float64) {
	b.forceType = t
	b.forceValue = value
	b.stress = value / b.CrossSectionArea()
	b.strain = strainOf(b.stress, b.material)
}

func strainOf(stress float64, m Material) float64 {
	if m.YoungsModulus <= 0 {
		return 0
	}
	return stress / m.YoungsModulus
}

func (b *Beam) currentLength() float64 {
	return r3.Norm(r3.Sub(b.end.Position(), b.start.Position()))
}
