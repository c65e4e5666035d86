package model

import (
	"maps"
	"slices"
)

// Graph is an immutable snapshot of the diagram: nodes and edges in insertion order.
// It is the value handed to rendering surfaces and returned by the store.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is the size the surface measured for a rendered node.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node represents a positioned, labeled vertex in the diagram.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"` // renderer hint, e.g. "input", "output", "default"
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"` // opaque payload, conventionally {"label": "..."}
	Selected bool           `json:"selected,omitempty"`
	Dragging bool           `json:"dragging,omitempty"`
	Measured *Dimensions    `json:"measured,omitempty"`
}

// Label returns the "label" entry of the node payload, or the id when there is none.
func (n Node) Label() string {
	if s, ok := n.Data["label"].(string); ok && s != "" {
		return s
	}
	return n.ID
}

// Edge represents a connection from Source to Target.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
	Animated     bool   `json:"animated,omitempty"`
	Selected     bool   `json:"selected,omitempty"`
}

// Connection is a proposed edge produced by a connect gesture.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// NewNode creates a node carrying a label payload.
func NewNode(id, label string, pos Position) Node {
	return Node{
		ID:       id,
		Position: pos,
		Data:     map[string]any{"label": label},
	}
}

// Clone returns a copy of the node that shares no memory with n.
// Data values are copied one level deep.
func (n Node) Clone() Node {
	n.Data = maps.Clone(n.Data)
	if n.Measured != nil {
		m := *n.Measured
		n.Measured = &m
	}
	return n
}

// Clone returns a copy of the graph that shares no slices, maps or pointers with g.
func (g Graph) Clone() Graph {
	var nodes []Node
	if g.Nodes != nil {
		nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			nodes[i] = n.Clone()
		}
	}
	return Graph{
		Nodes: nodes,
		Edges: slices.Clone(g.Edges),
	}
}

// NodeIDs returns the set of node ids in the graph.
func (g Graph) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// DuplicateIDs reports every node id that occurs more than once, in first-seen order.
func DuplicateIDs(nodes []Node) []string {
	seen := make(map[string]int, len(nodes))
	var dups []string
	for _, n := range nodes {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			dups = append(dups, n.ID)
		}
	}
	return dups
}

// DanglingEdges returns the edges whose source or target is not a node of g.
// The store tolerates these after node removal; the surface simply skips them.
func DanglingEdges(g Graph) []Edge {
	ids := g.NodeIDs()
	var dangling []Edge
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			dangling = append(dangling, e)
		}
	}
	return dangling
}

// DuplicateEdgeIDs reports every edge id that occurs more than once, in first-seen order.
func DuplicateEdgeIDs(edges []Edge) []string {
	seen := make(map[string]int, len(edges))
	var dups []string
	for _, e := range edges {
		seen[e.ID]++
		if seen[e.ID] == 2 {
			dups = append(dups, e.ID)
		}
	}
	return dups
}
