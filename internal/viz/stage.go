package viz

import (
	"math"
	"sort"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	nodePickRadius = 6.0
	beamPickRadius = 4.0

	frameColor = "#333344"
	forceColor = "#ff8800"
	speedColor = "#44ff88"
)

// Stage is the renderer-side container the structure manager attaches
// nodes and beams to. Elements are drawn in the order they were added,
// beams sorted far to near.
type Stage struct {
	elements []structure.Element
	index    map[structure.Element]int
	size     float64
}

func NewStage(worldSize float64) *Stage {
	return &Stage{index: make(map[structure.Element]int), size: worldSize}
}

func (s *Stage) Add(e structure.Element) {
	if _, ok := s.index[e]; ok {
		return
	}
	s.index[e] = len(s.elements)
	s.elements = append(s.elements, e)
}

func (s *Stage) Remove(e structure.Element) {
	i, ok := s.index[e]
	if !ok {
		return
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	delete(s.index, e)
	for j := i; j < len(s.elements); j++ {
		s.index[s.elements[j]] = j
	}
}

func (s *Stage) Len() int { return len(s.elements) }

func (s *Stage) Nodes() []*structure.Node {
	var out []*structure.Node
	for _, e := range s.elements {
		if n, ok := e.(*structure.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Stage) Beams() []*structure.Beam {
	var out []*structure.Beam
	for _, e := range s.elements {
		if b, ok := e.(*structure.Beam); ok {
			out = append(out, b)
		}
	}
	return out
}

type projected struct {
	x1, y1, x2, y2 int
	depth          float64
	color          string
}

// Render draws the world frame, beams, motion arrows and nodes.
func (s *Stage) Render(c *Canvas, cam *Camera) {
	sw, sh := c.SubWidth(), c.SubHeight()
	line := func(a, b r3.Vec, color string) (projected, bool) {
		x1, y1, d1, v1 := cam.Project(a, sw, sh)
		x2, y2, d2, v2 := cam.Project(b, sw, sh)
		return projected{x1, y1, x2, y2, (d1 + d2) / 2, color}, v1 || v2
	}

	for _, e := range worldFrame(s.size) {
		if p, ok := line(e[0], e[1], frameColor); ok {
			c.DrawLine(p.x1, p.y1, p.x2, p.y2, p.color)
		}
	}

	beams := s.Beams()
	lines := make([]projected, 0, len(beams))
	for _, b := range beams {
		color := b.ForceColor()
		if b.IsSelected() {
			color = b.Color()
		}
		if p, ok := line(b.Start().Position(), b.End().Position(), color); ok {
			lines = append(lines, p)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].depth < lines[j].depth })
	for _, p := range lines {
		c.DrawLine(p.x1, p.y1, p.x2, p.y2, p.color)
	}

	nodes := s.Nodes()
	for _, n := range nodes {
		for ch, color := range map[structure.Channel]string{structure.Force: forceColor, structure.Velocity: speedColor} {
			a := n.Channel(ch).Arrow
			if !a.Visible {
				continue
			}
			tip := r3.Add(a.Origin, r3.Scale(a.Length, a.Direction))
			if p, ok := line(a.Origin, tip, color); ok {
				c.DrawLine(p.x1, p.y1, p.x2, p.y2, p.color)
			}
		}
	}
	for _, n := range nodes {
		x, y, _, ok := cam.Project(n.Position(), sw, sh)
		if ok {
			c.Disc(x, y, 1, n.Color())
		}
	}
}

// Pick returns the node nearest to sub-pixel (x, y), or failing that the
// nearest beam, or nil. With beamsOnly set nodes are skipped.
func (s *Stage) Pick(cam *Camera, sw, sh, x, y int, beamsOnly bool) any {
	if !beamsOnly {
		var best *structure.Node
		bestDist := nodePickRadius
		for _, n := range s.Nodes() {
			px, py, _, ok := cam.Project(n.Position(), sw, sh)
			if !ok {
				continue
			}
			if d := math.Hypot(float64(px-x), float64(py-y)); d <= bestDist {
				best, bestDist = n, d
			}
		}
		if best != nil {
			return best
		}
	}

	var best *structure.Beam
	bestDist := beamPickRadius
	for _, b := range s.Beams() {
		x1, y1, _, v1 := cam.Project(b.Start().Position(), sw, sh)
		x2, y2, _, v2 := cam.Project(b.End().Position(), sw, sh)
		if !v1 && !v2 {
			continue
		}
		if d := segmentDistance(float64(x), float64(y), float64(x1), float64(y1), float64(x2), float64(y2)); d <= bestDist {
			best, bestDist = b, d
		}
	}
	if best != nil {
		return best
	}
	return nil
}

func segmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := math.Max(0, math.Min(1, ((px-ax)*dx+(py-ay)*dy)/l2))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

// worldFrame is the edge list of the world cube plus the three axes.
func worldFrame(size float64) [][2]r3.Vec {
	s := size / 2
	v := []r3.Vec{{X: -s, Y: -s, Z: -s}, {X: s, Y: -s, Z: -s}, {X: s, Y: s, Z: -s}, {X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s}, {X: s, Y: -s, Z: s}, {X: s, Y: s, Z: s}, {X: -s, Y: s, Z: s}}
	ei := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	edges := make([][2]r3.Vec, 0, len(ei)+3)
	for _, e := range ei {
		edges = append(edges, [2]r3.Vec{v[e[0]], v[e[1]]})
	}
	o := r3.Vec{}
	return append(edges, [2]r3.Vec{o, {X: s / 5}}, [2]r3.Vec{o, {Y: s / 5}}, [2]r3.Vec{o, {Z: s / 5}})
}
