// Package selection turns pick events into node and beam selection and
// the editing actions that depend on it.
package selection

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies what an operation did.
type Kind int

const (
	Cleared Kind = iota
	NodeSelected
	NodeDeselected
	PairStarted
	PairCompleted
	BeamToggled
	BeamCreated
	Deleted
	Moved
	FixedToggled
	ForceApplied
	MaterialChanged
	Rejected
)

// Event is the outcome of a controller operation.
type Event struct {
	Kind    Kind
	Message string
	Node    *structure.Node
	Beam    *structure.Beam
	Err     error
}

// Gizmo is the move handle bound to the single selected node.
type Gizmo interface {
	Attach(n *structure.Node)
	Detach()
}

type Option func(*Controller)

func WithSink(s StatusSink) Option { return func(c *Controller) { c.sink = s } }

func WithGizmo(g Gizmo) Option { return func(c *Controller) { c.gizmo = g } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

// Controller is the selection state machine. At most two nodes are
// selected at any time, and when two are, their slots are exactly 1 and 2.
type Controller struct {
	mgr    *structure.Manager
	world  structure.World
	sink   StatusSink
	gizmo  Gizmo
	logger *slog.Logger
}

func New(mgr *structure.Manager, world structure.World, opts ...Option) *Controller {
	c := &Controller{mgr: mgr, world: world}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

func (c *Controller) World() structure.World { return c.world }

// Pick resolves a picked object and applies the matching transition.
// target is a *structure.Node, a *structure.Beam, or nil for empty space.
func (c *Controller) Pick(target any, multiSelect bool) Event {
	switch t := target.(type) {
	case *structure.Node:
		if t == nil {
			return c.ClickEmpty()
		}
		return c.ClickNode(t, multiSelect)
	case *structure.Beam:
		if t == nil {
			return c.ClickEmpty()
		}
		return c.ClickBeam(t)
	default:
		return c.ClickEmpty()
	}
}

func (c *Controller) ClickEmpty() Event {
	c.mgr.UnselectAll()
	c.mgr.UnselectBeams()
	c.detachGizmo()
	return c.emit(Event{Kind: Cleared, Message: MsgNoSelection})
}

func (c *Controller) ClickNode(n *structure.Node, multiSelect bool) Event {
	c.mgr.UnselectBeams()
	if !multiSelect {
		c.mgr.UnselectAll()
		n.Select(1, false)
		c.attachGizmo(n)
		return c.emit(Event{Kind: NodeSelected, Message: MsgMoveNode, Node: n})
	}

	c.detachGizmo()
	if n.IsSelected() {
		c.mgr.Deselect(n)
		return c.emit(Event{Kind: NodeDeselected, Message: MsgNodeDeselected, Node: n})
	}

	switch c.mgr.SelectedCount() {
	case 0:
		n.Select(1, true)
		return c.emit(Event{Kind: PairStarted, Message: MsgSelectEnd, Node: n})
	case 1:
		n.Select(2, true)
		return c.emit(Event{Kind: PairCompleted, Message: MsgConnection, Node: n})
	default:
		c.mgr.UnselectAll()
		n.Select(1, true)
		return c.emit(Event{Kind: PairStarted, Message: MsgSelectEnd, Node: n})
	}
}

// ClickBeam toggles the beam. Node selection is cleared because the node
// and beam panels are exclusive.
func (c *Controller) ClickBeam(b *structure.Beam) Event {
	c.mgr.UnselectAll()
	c.detachGizmo()
	b.SetSelected(!b.IsSelected())
	if b.IsSelected() {
		return c.emit(Event{Kind: BeamToggled, Message: MsgBeamSelected, Beam: b})
	}
	return c.emit(Event{Kind: BeamToggled, Message: MsgBeamDeselected, Beam: b})
}

// LinkSelected connects the two selected nodes.
func (c *Controller) LinkSelected() Event {
	if !c.mgr.ExactlySelected(2) {
		return c.emit(Event{Kind: Rejected, Message: MsgLinkNeedsTwo, Err: structure.ErrSelectionCount})
	}
	b, err := c.mgr.LinkSelected()
	if err != nil {
		return c.emit(Event{Kind: Rejected, Message: rejection(err), Err: err})
	}
	return c.emit(Event{Kind: BeamCreated, Message: MsgBeamCreated, Beam: b, Node: b.End()})
}

// DeleteSelected removes the selected beams and nodes. Beams go first so
// the cascade count only covers beams that were not picked directly.
func (c *Controller) DeleteSelected() Event {
	beams := c.mgr.SelectedBeams()
	nodes := c.mgr.SelectedNodes()
	if len(beams) == 0 && len(nodes) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgDeleteNeedsPick})
	}

	for _, b := range beams {
		if err := c.mgr.DeleteBeam(b); err != nil {
			return c.emit(Event{Kind: Rejected, Message: rejection(err), Err: err})
		}
	}
	cascaded := 0
	for _, n := range nodes {
		removed, err := c.mgr.DeleteNode(n)
		if err != nil {
			return c.emit(Event{Kind: Rejected, Message: rejection(err), Err: err})
		}
		cascaded += len(removed)
	}
	c.detachGizmo()

	msg := fmt.Sprintf("Deleted %d node(s), %d beam(s)", len(nodes), len(beams)+cascaded)
	return c.emit(Event{Kind: Deleted, Message: msg})
}

// MoveSelected moves the single selected node through its handle, kept
// inside the world. The node picks the new position up on its next update.
func (c *Controller) MoveSelected(delta r3.Vec) Event {
	if !c.mgr.ExactlySelected(1) {
		return c.emit(Event{Kind: Rejected, Message: MsgMoveNeedsOne})
	}
	n := c.mgr.NodeBySlot(1)
	h := n.Handle()
	h.Position = c.world.Clamp(r3.Add(h.Position, delta))
	msg := fmt.Sprintf("Moved node to (%.2f, %.2f, %.2f) %s", h.Position.X, h.Position.Y, h.Position.Z, c.world.Unit)
	return c.emit(Event{Kind: Moved, Message: msg, Node: n})
}

func (c *Controller) ToggleFixed() Event {
	nodes := c.mgr.SelectedNodes()
	if len(nodes) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgNeedsNode})
	}
	for _, n := range nodes {
		n.SetFixed(!n.IsFixed())
	}
	n := nodes[0]
	msg := "Node released"
	if n.IsFixed() {
		msg = "Node fixed"
	}
	return c.emit(Event{Kind: FixedToggled, Message: msg, Node: n})
}

// ApplyForce sets the force on every selected node.
func (c *Controller) ApplyForce(f r3.Vec) Event {
	nodes := c.mgr.SelectedNodes()
	if len(nodes) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgNeedsNode})
	}
	for _, n := range nodes {
		n.SetForce(f)
	}
	msg := fmt.Sprintf("Applied force (%.2f, %.2f, %.2f)", f.X, f.Y, f.Z)
	return c.emit(Event{Kind: ForceApplied, Message: msg, Node: nodes[0]})
}

func (c *Controller) ClearForce() Event {
	nodes := c.mgr.SelectedNodes()
	if len(nodes) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgNeedsNode})
	}
	for _, n := range nodes {
		n.SetForce(r3.Vec{})
	}
	return c.emit(Event{Kind: ForceApplied, Message: "Force cleared", Node: nodes[0]})
}

// SetBeamMaterial changes the material of every selected beam.
func (c *Controller) SetBeamMaterial(name string) Event {
	beams := c.mgr.SelectedBeams()
	if len(beams) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgNeedsBeam})
	}
	for _, b := range beams {
		if err := b.SetMaterial(name); err != nil {
			return c.emit(Event{Kind: Rejected, Message: rejection(err), Err: err})
		}
	}
	msg := fmt.Sprintf("Material set to %s", beams[0].Material().Name)
	return c.emit(Event{Kind: MaterialChanged, Message: msg, Beam: beams[0]})
}

// CycleBeamMaterial advances the selected beams to the next catalog entry.
func (c *Controller) CycleBeamMaterial() Event {
	beams := c.mgr.SelectedBeams()
	if len(beams) == 0 {
		return c.emit(Event{Kind: Rejected, Message: MsgNeedsBeam})
	}
	return c.SetBeamMaterial(structure.NextMaterial(beams[0].Material().Name).Name)
}

func (c *Controller) attachGizmo(n *structure.Node) {
	if c.gizmo != nil {
		c.gizmo.Attach(n)
	}
}

func (c *Controller) detachGizmo() {
	if c.gizmo != nil {
		c.gizmo.Detach()
	}
}

func (c *Controller) emit(ev Event) Event {
	if ev.Err != nil {
		c.logger.Debug("selection rejected", "message", ev.Message, "err", ev.Err)
	}
	if c.sink != nil {
		c.sink.Status(ev.Message)
	}
	return ev
}

func rejection(err error) string {
	switch {
	case errors.Is(err, structure.ErrDuplicateBeam):
		return "Nodes are already connected"
	case errors.Is(err, structure.ErrUnknownMaterial):
		return "Unknown material"
	case errors.Is(err, structure.ErrSelectionCount):
		return MsgLinkNeedsTwo
	default:
		return err.Error()
	}
}
