package dag

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/dag-ui/pkg/model"
)

// ErrCycle is returned when a graph, or a proposed edge, breaks acyclicity
var ErrCycle = errors.New("graph has a cycle")

// Report summarizes the structure of a snapshot
type Report struct {
	Acyclic   bool       `json:"acyclic"`
	Order     []string   `json:"order,omitempty"`     // topological order, only when acyclic
	Cycles    [][]string `json:"cycles,omitempty"`    // strongly connected components of size > 1
	SelfLoops []string   `json:"selfLoops,omitempty"` // edge ids
	Dangling  []string   `json:"dangling,omitempty"`  // edge ids with a missing endpoint
	Roots     []string   `json:"roots,omitempty"`     // no incoming edge from another node
	Leaves    []string   `json:"leaves,omitempty"`    // no outgoing edge to another node
}

// Analyze builds the graph view of g and reports on it
func Analyze(g model.Graph) Report {
	return Build(g).Analyze()
}

// Analyze reports on an already built graph
func (g *Graph) Analyze() Report {
	r := Report{}

	for _, scc := range newTarjanSCC(g.graph).findCycles() {
		members := make([]string, len(scc))
		for i, id := range scc {
			members[i] = g.names[id]
		}
		r.Cycles = append(r.Cycles, members)
	}
	for _, e := range g.selfLoops {
		r.SelfLoops = append(r.SelfLoops, e.ID)
	}
	for _, e := range g.dangling {
		r.Dangling = append(r.Dangling, e.ID)
	}

	r.Acyclic = len(r.Cycles) == 0 && len(r.SelfLoops) == 0
	if r.Acyclic {
		// nil order sorts ties by graph id, which is insertion order
		sorted, err := topo.SortStabilized(g.graph, nil)
		if err == nil {
			r.Order = make([]string, len(sorted))
			for i, n := range sorted {
				r.Order[i] = g.names[n.ID()]
			}
		}
	}

	for id, name := range g.names {
		if g.graph.To(int64(id)).Len() == 0 {
			r.Roots = append(r.Roots, name)
		}
		if g.graph.From(int64(id)).Len() == 0 {
			r.Leaves = append(r.Leaves, name)
		}
	}

	return r
}

// Validate returns an error wrapping ErrCycle when g is not a DAG
func Validate(g model.Graph) error {
	r := Analyze(g)
	switch {
	case len(r.Cycles) > 0:
		return fmt.Errorf("%w: %s", ErrCycle, strings.Join(r.Cycles[0], " -> "))
	case len(r.SelfLoops) > 0:
		return fmt.Errorf("%w: self-loop on edge %s", ErrCycle, r.SelfLoops[0])
	}
	return nil
}

// WouldCreateCycle reports whether adding conn to g closes a cycle.
// A connection to or from a missing node cannot close one.
func WouldCreateCycle(g model.Graph, conn model.Connection) bool {
	if conn.Source == conn.Target {
		return true
	}
	dg := Build(g)
	from, ok := dg.Node(conn.Source)
	if !ok {
		return false
	}
	to, ok := dg.Node(conn.Target)
	if !ok {
		return false
	}
	return topo.PathExistsIn(dg.graph, to, from)
}
