package structure

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultMass   = 100.0
	DefaultRadius = 0.0025

	// FrictionCoefficient is the damping rate k applied to unforced nodes.
	FrictionCoefficient = 1.0
	// RestSpeed is the velocity magnitude below which a node snaps to rest.
	RestSpeed = 0.001

	indicatorDecay = 0.1
	arrowScale     = 0.1
	arrowMinLength = 1e-6
)

// Channel names one of the three motion channels of a node.
type Channel int

const (
	Force Channel = iota
	Acceleration
	Velocity
	numChannels
)

func (c Channel) String() string {
	switch c {
	case Force:
		return "force"
	case Acceleration:
		return "acceleration"
	case Velocity:
		return "velocity"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Channels lists every motion channel in display order.
func Channels() []Channel { return []Channel{Force, Acceleration, Velocity} }

// Arrow is the visual indicator of a motion channel.
type Arrow struct {
	Origin    r3.Vec
	Direction r3.Vec
	Length    float64
	Visible   bool
}

// MotionChannel pairs a channel vector with its indicator.
type MotionChannel struct {
	Vector r3.Vec
	Arrow  Arrow
}

// Handle is the external transform a renderer or move gizmo writes to.
// Node.Update copies Handle.Position back into the node.
type Handle struct {
	Position r3.Vec
}

// Node is a point mass.
type Node struct {
	ID     int64
	Radius float64

	position      r3.Vec
	handle        *Handle
	mass          float64
	timeStep      float64
	channels      [numChannels]MotionChannel
	fixed         bool
	selected      bool
	selectedIndex int
}

// NewNode creates a free, unselected node at position.
func NewNode(position r3.Vec, mass float64) (*Node, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidMass, mass)
	}
	n := &Node{
		Radius:   DefaultRadius,
		position: position,
		handle:   &Handle{Position: position},
		mass:     mass,
		timeStep: DefaultTimeStep,
	}
	n.refreshIndicators()
	return n, nil
}

func (n *Node) Position() r3.Vec { return n.position }
func (n *Node) Mass() float64    { return n.mass }
func (n *Node) Handle() *Handle  { return n.handle }
func (n *Node) IsFixed() bool    { return n.fixed }
func (n *Node) IsSelected() bool { return n.selected }

// SelectedIndex is 0 when unselected, 1 for the primary and 2 for the
// secondary node of a connect gesture.
func (n *Node) SelectedIndex() int { return n.selectedIndex }

func (n *Node) Force() r3.Vec        { return n.channels[Force].Vector }
func (n *Node) Acceleration() r3.Vec { return n.channels[Acceleration].Vector }
func (n *Node) Velocity() r3.Vec     { return n.channels[Velocity].Vector }

// Channel returns the motion channel c.
func (n *Node) Channel(c Channel) MotionChannel { return n.channels[c] }

func (n *Node) SetMass(m float64) error {
	if m <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidMass, m)
	}
	n.mass = m
	return nil
}

// SetTimeStep sets the simulation time step used by SetForce.
func (n *Node) SetTimeStep(dt float64) {
	if dt > 0 {
		n.timeStep = dt
	}
}

// SetForce replaces the force channel. A non-zero force also adds
// force/mass to the acceleration and acceleration*timeStep to the velocity;
// repeated calls accumulate.
func (n *Node) SetForce(f r3.Vec) {
	n.channels[Force].Vector = f
	if f == (r3.Vec{}) {
		n.refreshIndicators()
		return
	}
	acc := r3.Add(n.channels[Acceleration].Vector, r3.Scale(1/n.mass, f))
	n.channels[Acceleration].Vector = acc
	n.channels[Velocity].Vector = r3.Add(n.channels[Velocity].Vector, r3.Scale(n.timeStep, acc))
	n.refreshIndicators()
}

// SetMotion overwrites velocity and acceleration without touching force.
func (n *Node) SetMotion(velocity, acceleration r3.Vec) {
	n.channels[Velocity].Vector = velocity
	n.channels[Acceleration].Vector = acceleration
	n.refreshIndicators()
}

// DampenMotion applies friction to a node with no force acting on it.
// Velocity decays at rate k while the acceleration indicator follows the
// friction acceleration at k/2, so the indicator outlives the motion.
func (n *Node) DampenMotion(dt float64) {
	if n.channels[Force].Vector != (r3.Vec{}) {
		return
	}
	vel := n.channels[Velocity].Vector
	acc := n.channels[Acceleration].Vector

	friction := r3.Scale(-FrictionCoefficient, vel)
	vel = r3.Add(vel, r3.Scale(dt, friction))
	acc = lerp(acc, friction, FrictionCoefficient/2*dt)

	if r3.Norm(vel) < RestSpeed {
		vel = r3.Vec{}
		acc = lerp(acc, r3.Vec{}, indicatorDecay*dt)
	}

	n.channels[Velocity].Vector = vel
	n.channels[Acceleration].Vector = acc
}

func (n *Node) SetFixed(fixed bool) { n.fixed = fixed }

// Select puts the node into selection slot. A slot above 2, or above 1
// without allowMultiple, unselects the node instead and returns false.
func (n *Node) Select(slot int, allowMultiple bool) bool {
	if slot < 1 || slot > 2 || (slot > 1 && !allowMultiple) {
		n.Unselect()
		return false
	}
	n.selected = true
	n.selectedIndex = slot
	return true
}

func (n *Node) Unselect() {
	n.selected = false
	n.selectedIndex = 0
}

// MoveTo places the node and its handle at p.
func (n *Node) MoveTo(p r3.Vec) {
	n.position = p
	n.handle.Position = p
}

func (n *Node) Translate(d r3.Vec) { n.MoveTo(r3.Add(n.position, d)) }

// Sync copies the handle position into the node.
func (n *Node) Sync() {
	n.position = n.handle.Position
	n.refreshIndicators()
}

// Update syncs the position from the handle, damps unforced motion and
// refreshes the channel indicators.
func (n *Node) Update(dt float64) {
	n.position = n.handle.Position
	n.DampenMotion(dt)
	n.refreshIndicators()
}

func (n *Node) Attach(c Container) {
	if c != nil {
		c.Add(n)
	}
}

func (n *Node) Detach(c Container) {
	if c != nil {
		c.Remove(n)
	}
}

// Color is the presentation cue for the node's state.
func (n *Node) Color() string {
	switch {
	case n.selectedIndex == 2:
		return "#ff88ff"
	case n.selected:
		return "#ffcc00"
	case n.fixed:
		return "#ff4444"
	default:
		return "#dddddd"
	}
}

func (n *Node) refreshIndicators() {
	for c := range n.channels {
		v := n.channels[c].Vector
		l := r3.Norm(v) * arrowScale
		n.channels[c].Arrow = Arrow{
			Origin:    n.position,
			Direction: unit(v),
			Length:    l,
			Visible:   l > arrowMinLength,
		}
	}
}

func (n *Node) radius() float64 {
	if n.Radius > 0 {
		return n.Radius
	}
	return DefaultRadius
}

func (n *Node) String() string {
	return fmt.Sprintf("node#%d(%.3f, %.3f, %.3f)", n.ID, n.position.X, n.position.Y, n.position.Z)
}
