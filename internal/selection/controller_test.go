package selection_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/trusslab/internal/selection"
	"github.com/san-kum/trusslab/internal/structure"
)

type fakeGizmo struct {
	node *structure.Node
}

func (g *fakeGizmo) Attach(n *structure.Node) { g.node = n }
func (g *fakeGizmo) Detach()                  { g.node = nil }

// slotInvariant checks that the selected nodes hold distinct slots starting at 1.
func slotInvariant(m *structure.Manager) {
	var slots []int
	for _, n := range m.Nodes() {
		Expect(n.SelectedIndex() > 0).To(Equal(n.IsSelected()))
		if n.IsSelected() {
			slots = append(slots, n.SelectedIndex())
		}
	}
	Expect(len(slots)).To(BeNumerically("<=", 2))
	switch len(slots) {
	case 1:
		Expect(slots).To(ConsistOf(1))
	case 2:
		Expect(slots).To(ConsistOf(1, 2))
	}
}

var _ = Describe("Controller", func() {
	var (
		mgr     *structure.Manager
		ctrl    *selection.Controller
		rec     *selection.Recorder
		gizmo   *fakeGizmo
		a, b, c *structure.Node
	)

	BeforeEach(func() {
		mgr = structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
		rec = &selection.Recorder{}
		gizmo = &fakeGizmo{}
		ctrl = selection.New(mgr, structure.DefaultWorld(), selection.WithSink(rec), selection.WithGizmo(gizmo))

		var err error
		a, err = mgr.CreateNode(r3.Vec{})
		Expect(err).NotTo(HaveOccurred())
		b, _ = mgr.CreateNode(r3.Vec{X: 1})
		c, _ = mgr.CreateNode(r3.Vec{Y: 1})
	})

	AfterEach(func() {
		slotInvariant(mgr)
	})

	Describe("clicking empty space", func() {
		It("clears every selection", func() {
			ctrl.ClickNode(a, false)
			ev := ctrl.Pick(nil, false)

			Expect(ev.Message).To(Equal("No object selected"))
			Expect(mgr.SelectedCount()).To(BeZero())
			Expect(gizmo.node).To(BeNil())
		})
	})

	Describe("single select", func() {
		It("selects the node as primary and attaches the gizmo", func() {
			ev := ctrl.Pick(a, false)

			Expect(ev.Message).To(Equal("Selected node for movement"))
			Expect(a.SelectedIndex()).To(Equal(1))
			Expect(gizmo.node).To(Equal(a))
		})

		It("replaces a previous selection", func() {
			ctrl.ClickNode(a, false)
			ctrl.ClickNode(b, false)

			Expect(a.IsSelected()).To(BeFalse())
			Expect(b.SelectedIndex()).To(Equal(1))
			Expect(mgr.SelectedCount()).To(Equal(1))
		})

		It("replaces a pair selection", func() {
			ctrl.ClickNode(a, true)
			ctrl.ClickNode(b, true)
			ctrl.ClickNode(c, false)

			Expect(mgr.SelectedNodes()).To(ConsistOf(c))
		})
	})

	Describe("multi select", func() {
		It("walks through primary, secondary and reset", func() {
			ev := ctrl.ClickNode(a, true)
			Expect(ev.Message).To(Equal("Select an end node (Ctrl-click)"))
			Expect(a.SelectedIndex()).To(Equal(1))

			ev = ctrl.ClickNode(b, true)
			Expect(ev.Message).To(Equal("Connection established"))
			Expect(b.SelectedIndex()).To(Equal(2))
			Expect(mgr.ExactlySelected(2)).To(BeTrue())

			ev = ctrl.ClickNode(c, true)
			Expect(ev.Message).To(Equal("Select an end node (Ctrl-click)"))
			Expect(mgr.SelectedNodes()).To(ConsistOf(c))
			Expect(c.SelectedIndex()).To(Equal(1))
		})

		It("toggles off an already selected node", func() {
			ctrl.ClickNode(a, true)
			ctrl.ClickNode(b, true)

			ev := ctrl.ClickNode(a, true)
			Expect(ev.Kind).To(Equal(selection.NodeDeselected))
			Expect(a.IsSelected()).To(BeFalse())
			Expect(b.SelectedIndex()).To(Equal(1))

			ctrl.ClickNode(c, true)
			Expect(c.SelectedIndex()).To(Equal(2))
		})

		It("detaches the move gizmo", func() {
			ctrl.ClickNode(a, false)
			ctrl.ClickNode(b, true)
			Expect(gizmo.node).To(BeNil())
		})
	})

	Describe("beam selection", func() {
		It("toggles the beam and clears node selection", func() {
			beam, err := mgr.CreateBeam(a, b)
			Expect(err).NotTo(HaveOccurred())
			ctrl.ClickNode(c, false)

			ev := ctrl.Pick(beam, false)
			Expect(ev.Message).To(Equal("Selected beam"))
			Expect(beam.IsSelected()).To(BeTrue())
			Expect(mgr.SelectedCount()).To(BeZero())

			ev = ctrl.ClickBeam(beam)
			Expect(ev.Message).To(Equal("Beam deselected"))
			Expect(beam.IsSelected()).To(BeFalse())
		})

		It("is cleared by a node click", func() {
			beam, _ := mgr.CreateBeam(a, b)
			ctrl.ClickBeam(beam)
			ctrl.ClickNode(c, false)
			Expect(beam.IsSelected()).To(BeFalse())
		})
	})

	Describe("linking", func() {
		It("creates a beam between the selected pair", func() {
			ctrl.ClickNode(a, true)
			ctrl.ClickNode(b, true)

			ev := ctrl.LinkSelected()
			Expect(ev.Kind).To(Equal(selection.BeamCreated))
			Expect(ev.Beam.Length()).To(BeNumerically("~", 1.0, 1e-12))
			Expect(mgr.BeamCount()).To(Equal(1))
		})

		It("rejects anything but exactly two nodes", func() {
			ctrl.ClickNode(a, false)

			ev := ctrl.LinkSelected()
			Expect(ev.Kind).To(Equal(selection.Rejected))
			Expect(rec.Last()).To(Equal("Please select exactly 2 nodes to connect"))
			Expect(mgr.BeamCount()).To(BeZero())
		})

		It("rejects a duplicate connection", func() {
			ctrl.ClickNode(a, true)
			ctrl.ClickNode(b, true)
			ctrl.LinkSelected()

			ev := ctrl.LinkSelected()
			Expect(ev.Kind).To(Equal(selection.Rejected))
			Expect(ev.Message).To(Equal("Nodes are already connected"))
		})
	})

	Describe("deleting", func() {
		It("requires a selection", func() {
			ev := ctrl.DeleteSelected()
			Expect(ev.Message).To(Equal("Please select a node or beam to delete"))
		})

		It("cascades beams of the deleted node", func() {
			mgr.CreateBeam(a, b)
			mgr.CreateBeam(b, c)
			keep, _ := mgr.CreateBeam(a, c)

			ctrl.ClickNode(b, false)
			ev := ctrl.DeleteSelected()

			Expect(ev.Kind).To(Equal(selection.Deleted))
			Expect(ev.Message).To(Equal("Deleted 1 node(s), 2 beam(s)"))
			Expect(mgr.Beams()).To(ConsistOf(keep))
			Expect(gizmo.node).To(BeNil())
		})
	})

	Describe("moving", func() {
		It("moves the node through its handle on the next update", func() {
			ctrl.ClickNode(a, false)
			ev := ctrl.MoveSelected(r3.Vec{Y: 2})
			Expect(ev.Kind).To(Equal(selection.Moved))

			mgr.Update(0.1)
			Expect(a.Position()).To(Equal(r3.Vec{Y: 2}))
		})

		It("keeps the node inside the world", func() {
			ctrl.ClickNode(a, false)
			ctrl.MoveSelected(r3.Vec{X: 100})
			mgr.Update(0.1)
			Expect(a.Position().X).To(Equal(structure.DefaultWorldSize / 2))
		})

		It("requires exactly one node", func() {
			ev := ctrl.MoveSelected(r3.Vec{X: 1})
			Expect(ev.Kind).To(Equal(selection.Rejected))
		})
	})

	Describe("node and beam properties", func() {
		It("toggles the anchor flag", func() {
			ctrl.ClickNode(a, false)
			ev := ctrl.ToggleFixed()
			Expect(ev.Message).To(Equal("Node fixed"))
			Expect(a.IsFixed()).To(BeTrue())
		})

		It("applies and clears force", func() {
			ctrl.ClickNode(a, false)
			ctrl.ApplyForce(r3.Vec{X: 10})
			Expect(a.Force()).To(Equal(r3.Vec{X: 10}))

			ctrl.ClearForce()
			Expect(a.Force()).To(Equal(r3.Vec{}))
		})

		It("changes the material of the selected beam", func() {
			beam, _ := mgr.CreateBeam(a, b)
			ctrl.ClickBeam(beam)

			ev := ctrl.SetBeamMaterial("Concrete")
			Expect(ev.Kind).To(Equal(selection.MaterialChanged))
			Expect(beam.Material().Name).To(Equal("Concrete"))

			ctrl.CycleBeamMaterial()
			Expect(beam.Material().Name).To(Equal("Wood"))

			ev = ctrl.SetBeamMaterial("cheese")
			Expect(ev.Kind).To(Equal(selection.Rejected))
		})
	})
})
