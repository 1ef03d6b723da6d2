package analysis

import (
	"sort"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Connectivity describes how the structure hangs together.
type Connectivity struct {
	// Components are the connected parts, each sorted by node ID and
	// ordered by their lowest ID.
	Components [][]*structure.Node
	// Floating lists nodes whose part has no fixed node.
	Floating []*structure.Node
}

func (c Connectivity) Connected() bool { return len(c.Components) <= 1 }

// Connectivity builds an undirected graph with one vertex per node and one
// edge per beam.
func (e *Engine) Connectivity() Connectivity {
	nodes := e.mgr.Nodes()
	byID := make(map[int64]*structure.Node, len(nodes))
	g := simple.NewUndirectedGraph()
	for _, n := range nodes {
		byID[n.ID] = n
		g.AddNode(simple.Node(n.ID))
	}
	for _, b := range e.mgr.Beams() {
		g.SetEdge(g.NewEdge(simple.Node(b.Start().ID), simple.Node(b.End().ID)))
	}

	var out Connectivity
	for _, cc := range topo.ConnectedComponents(g) {
		part := make([]*structure.Node, 0, len(cc))
		anchored := false
		for _, v := range cc {
			n := byID[v.ID()]
			part = append(part, n)
			anchored = anchored || n.IsFixed()
		}
		sort.Slice(part, func(i, j int) bool { return part[i].ID < part[j].ID })
		out.Components = append(out.Components, part)
		if !anchored {
			out.Floating = append(out.Floating, part...)
		}
	}
	sort.Slice(out.Components, func(i, j int) bool { return out.Components[i][0].ID < out.Components[j][0].ID })
	sort.Slice(out.Floating, func(i, j int) bool { return out.Floating[i].ID < out.Floating[j].ID })
	return out
}
