package viz

import (
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

const gizmoLength = 0.5

// Gizmo marks the node that move keys act on. It draws the handle, which
// leads the node by up to one frame.
type Gizmo struct {
	node *structure.Node
}

func (g *Gizmo) Attach(n *structure.Node) { g.node = n }
func (g *Gizmo) Detach()                  { g.node = nil }
func (g *Gizmo) Node() *structure.Node    { return g.node }

func (g *Gizmo) Render(c *Canvas, cam *Camera) {
	if g.node == nil {
		return
	}
	sw, sh := c.SubWidth(), c.SubHeight()
	origin := g.node.Handle().Position
	ox, oy, _, ok := cam.Project(origin, sw, sh)
	if !ok {
		return
	}
	axes := []struct {
		dir   r3.Vec
		color string
	}{
		{r3.Vec{X: gizmoLength}, "#ff4444"},
		{r3.Vec{Y: gizmoLength}, "#44ff44"},
		{r3.Vec{Z: gizmoLength}, "#4488ff"},
	}
	for _, a := range axes {
		x, y, _, _ := cam.Project(r3.Add(origin, a.dir), sw, sh)
		c.DrawLine(ox, oy, x, y, a.color)
	}
}
