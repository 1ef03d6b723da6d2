package structure

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// NodeDefaults are applied to every node the manager creates.
type NodeDefaults struct {
	Mass     float64
	Radius   float64
	Material string
}

func DefaultNodeDefaults() NodeDefaults {
	return NodeDefaults{Mass: DefaultMass, Radius: DefaultRadius, Material: DefaultMaterial().Name}
}

// Manager owns the nodes and beams of a structure. Iteration follows
// insertion order.
type Manager struct {
	world     World
	defaults  NodeDefaults
	nodes     []*Node
	beams     []*Beam
	nextID    int64
	container Container
	logger    *slog.Logger
}

func NewManager(world World, defaults NodeDefaults, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if defaults.Mass <= 0 {
		defaults.Mass = DefaultMass
	}
	if defaults.Radius <= 0 {
		defaults.Radius = DefaultRadius
	}
	if _, err := LookupMaterial(defaults.Material); err != nil {
		defaults.Material = DefaultMaterial().Name
	}
	return &Manager{world: world, defaults: defaults, logger: logger}
}

func (m *Manager) World() World { return m.world }

// SetContainer binds the renderer container. Existing elements are moved
// from the previous container to the new one.
func (m *Manager) SetContainer(c Container) {
	for _, n := range m.nodes {
		n.Detach(m.container)
		n.Attach(c)
	}
	for _, b := range m.beams {
		b.Detach(m.container)
		b.Attach(c)
	}
	m.container = c
}

// CreateNode registers a node at position, clamped into the world.
func (m *Manager) CreateNode(position r3.Vec) (*Node, error) {
	n, err := NewNode(m.world.Clamp(position), m.defaults.Mass)
	if err != nil {
		return nil, err
	}
	m.nextID++
	n.ID = m.nextID
	n.Radius = m.defaults.Radius
	n.SetTimeStep(m.world.TimeStep)
	m.nodes = append(m.nodes, n)
	n.Attach(m.container)
	m.logger.Debug("node created", "id", n.ID, "x", n.position.X, "y", n.position.Y, "z", n.position.Z)
	return n, nil
}

// DeleteNode removes n and every beam that references it. The removed
// beams are returned.
func (m *Manager) DeleteNode(n *Node) ([]*Beam, error) {
	idx := m.nodeIndex(n)
	if idx < 0 {
		return nil, ErrNodeNotFound
	}
	wasSelected := n.IsSelected()
	n.Unselect()
	n.Detach(m.container)
	m.nodes = append(m.nodes[:idx], m.nodes[idx+1:]...)

	var removed []*Beam
	kept := m.beams[:0]
	for _, b := range m.beams {
		if b.References(n) {
			b.Detach(m.container)
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(m.beams); i++ {
		m.beams[i] = nil
	}
	m.beams = kept

	if wasSelected {
		m.compactSelection()
	}
	m.logger.Debug("node deleted", "id", n.ID, "beams", len(removed))
	return removed, nil
}

// CreateBeam connects two distinct nodes owned by the manager.
func (m *Manager) CreateBeam(a, b *Node) (*Beam, error) {
	if a == nil || b == nil {
		return nil, ErrNilNode
	}
	if a == b {
		return nil, fmt.Errorf("%w: node %d", ErrDegenerateBeam, a.ID)
	}
	if m.nodeIndex(a) < 0 || m.nodeIndex(b) < 0 {
		return nil, ErrNodeNotFound
	}
	for _, existing := range m.beams {
		if existing.Joins(a, b) {
			return nil, fmt.Errorf("%w: %d-%d", ErrDuplicateBeam, a.ID, b.ID)
		}
	}
	mat, err := LookupMaterial(m.defaults.Material)
	if err != nil {
		return nil, err
	}
	beam, err := NewBeam(a, b, mat)
	if err != nil {
		return nil, err
	}
	m.nextID++
	beam.ID = m.nextID
	m.beams = append(m.beams, beam)
	beam.Attach(m.container)
	m.logger.Debug("beam created", "id", beam.ID, "start", a.ID, "end", b.ID, "length", beam.length)
	return beam, nil
}

// LinkSelected connects the primary selected node to the secondary one.
func (m *Manager) LinkSelected() (*Beam, error) {
	if !m.ExactlySelected(2) {
		return nil, fmt.Errorf("%w: have %d", ErrSelectionCount, m.SelectedCount())
	}
	return m.CreateBeam(m.NodeBySlot(1), m.NodeBySlot(2))
}

func (m *Manager) DeleteBeam(b *Beam) error {
	for i, existing := range m.beams {
		if existing == b {
			b.Detach(m.container)
			m.beams = append(m.beams[:i], m.beams[i+1:]...)
			m.logger.Debug("beam deleted", "id", b.ID)
			return nil
		}
	}
	return ErrBeamNotFound
}

// Clear removes every node and beam.
func (m *Manager) Clear() {
	for _, b := range m.beams {
		b.Detach(m.container)
	}
	for _, n := range m.nodes {
		n.Detach(m.container)
	}
	m.beams = nil
	m.nodes = nil
}

func (m *Manager) UpdateAllNodes(dt float64) {
	for _, n := range m.nodes {
		n.Update(dt)
	}
}

func (m *Manager) UpdateAllBeams(dt float64) {
	for _, b := range m.beams {
		b.Update(dt)
	}
}

// Update advances nodes first so beams read the frame's final node state.
func (m *Manager) Update(dt float64) {
	m.UpdateAllNodes(dt)
	m.UpdateAllBeams(dt)
}

// Nodes returns the nodes in insertion order. The slice is a copy.
func (m *Manager) Nodes() []*Node {
	out := make([]*Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Beams returns the beams in insertion order. The slice is a copy.
func (m *Manager) Beams() []*Beam {
	out := make([]*Beam, len(m.beams))
	copy(out, m.beams)
	return out
}

func (m *Manager) NodeCount() int { return len(m.nodes) }
func (m *Manager) BeamCount() int { return len(m.beams) }

// Node looks a node up by id.
func (m *Manager) Node(id int64) *Node {
	for _, n := range m.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Contains reports whether n is owned by the manager.
func (m *Manager) Contains(n *Node) bool { return m.nodeIndex(n) >= 0 }

// SelectedNodes returns the selected nodes ordered by selection slot.
func (m *Manager) SelectedNodes() []*Node {
	var out []*Node
	for _, n := range m.nodes {
		if n.IsSelected() {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].selectedIndex < out[j].selectedIndex })
	return out
}

func (m *Manager) SelectedBeams() []*Beam {
	var out []*Beam
	for _, b := range m.beams {
		if b.IsSelected() {
			out = append(out, b)
		}
	}
	return out
}

func (m *Manager) SelectedCount() int {
	count := 0
	for _, n := range m.nodes {
		if n.IsSelected() {
			count++
		}
	}
	return count
}

func (m *Manager) ExactlySelected(count int) bool { return m.SelectedCount() == count }

// NodeBySlot returns the node holding selection slot 1 or 2.
func (m *Manager) NodeBySlot(slot int) *Node {
	for _, n := range m.nodes {
		if n.IsSelected() && n.selectedIndex == slot {
			return n
		}
	}
	return nil
}

// BeamsOf returns every beam that references n.
func (m *Manager) BeamsOf(n *Node) []*Beam {
	var out []*Beam
	for _, b := range m.beams {
		if b.References(n) {
			out = append(out, b)
		}
	}
	return out
}

func (m *Manager) FixedNodes() []*Node {
	var out []*Node
	for _, n := range m.nodes {
		if n.IsFixed() {
			out = append(out, n)
		}
	}
	return out
}

func (m *Manager) FreeNodes() []*Node {
	var out []*Node
	for _, n := range m.nodes {
		if !n.IsFixed() {
			out = append(out, n)
		}
	}
	return out
}

// UnselectAll clears node selection.
func (m *Manager) UnselectAll() {
	for _, n := range m.nodes {
		n.Unselect()
	}
}

// UnselectBeams clears beam selection.
func (m *Manager) UnselectBeams() {
	for _, b := range m.beams {
		b.SetSelected(false)
	}
}

// Deselect unselects n and moves a remaining secondary node into the
// primary slot.
func (m *Manager) Deselect(n *Node) {
	n.Unselect()
	m.compactSelection()
}

// SetDefaultMaterial changes the material used for new beams.
func (m *Manager) SetDefaultMaterial(name string) error {
	mat, err := LookupMaterial(name)
	if err != nil {
		return err
	}
	m.defaults.Material = mat.Name
	return nil
}

func (m *Manager) compactSelection() {
	selected := m.SelectedNodes()
	for i, n := range selected {
		n.selectedIndex = i + 1
	}
}

func (m *Manager) nodeIndex(n *Node) int {
	for i, existing := range m.nodes {
		if existing == n {
			return i
		}
	}
	return -1
}
