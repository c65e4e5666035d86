// Package dag analyzes a diagram snapshot as a directed graph: topological
// order, cycles, self-loops and dangling edges. The store itself never
// requires acyclicity; this package reports on it and backs the opt-in guard.
package dag

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Graph is a gonum view of a snapshot. Graph ids are the insertion index of each node.
type Graph struct {
	graph     *simple.DirectedGraph
	ids       map[string]int64 // node id -> graph id
	names     []string         // graph id -> node id
	selfLoops []model.Edge
	dangling  []model.Edge
}

// Build indexes a snapshot. Edges whose endpoints are missing, and self-loops,
// are kept aside since a simple directed graph cannot hold them; parallel edges
// collapse into one. If a node id occurs twice the first occurrence wins.
func Build(g model.Graph) *Graph {
	dg := &Graph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64, len(g.Nodes)),
		names: make([]string, 0, len(g.Nodes)),
	}

	for _, n := range g.Nodes {
		if _, exists := dg.ids[n.ID]; exists {
			continue
		}
		id := int64(len(dg.names))
		dg.ids[n.ID] = id
		dg.names = append(dg.names, n.ID)
		dg.graph.AddNode(simple.Node(id))
	}

	for _, e := range g.Edges {
		from, okFrom := dg.ids[e.Source]
		to, okTo := dg.ids[e.Target]
		switch {
		case !okFrom || !okTo:
			dg.dangling = append(dg.dangling, e)
		case from == to:
			dg.selfLoops = append(dg.selfLoops, e)
		case !dg.graph.HasEdgeFromTo(from, to):
			dg.graph.SetEdge(dg.graph.NewEdge(dg.graph.Node(from), dg.graph.Node(to)))
		}
	}

	return dg
}

// Directed returns the underlying gonum graph
func (g *Graph) Directed() *simple.DirectedGraph {
	return g.graph
}

// Name returns the node id for a graph id
func (g *Graph) Name(id int64) string {
	if id < 0 || id >= int64(len(g.names)) {
		return ""
	}
	return g.names[id]
}

// Node returns the gonum node for a node id
func (g *Graph) Node(name string) (graph.Node, bool) {
	id, ok := g.ids[name]
	if !ok {
		return nil, false
	}
	return g.graph.Node(id), true
}

// Len returns the number of distinct nodes
func (g *Graph) Len() int {
	return len(g.names)
}

// Successors returns the node ids name points to, in insertion order
func (g *Graph) Successors(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	return g.namesOf(g.graph.From(id))
}

// Predecessors returns the node ids pointing to name, in insertion order
func (g *Graph) Predecessors(name string) []string {
	id, ok := g.ids[name]
	if !ok {
		return nil
	}
	return g.namesOf(g.graph.To(id))
}

func (g *Graph) namesOf(it graph.Nodes) []string {
	ids := sortedIDs(it)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.names[id]
	}
	return out
}

// sortedIDs drains a node iterator; gonum iterates in map order
func sortedIDs(it graph.Nodes) []int64 {
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
