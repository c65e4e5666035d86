package changes

import (
	"fmt"
	"maps"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Summary lists the element ids that differ between two snapshots
type Summary struct {
	AddedNodes    []string `json:"addedNodes,omitempty"`
	RemovedNodes  []string `json:"removedNodes,omitempty"`
	ModifiedNodes []string `json:"modifiedNodes,omitempty"`
	AddedEdges    []string `json:"addedEdges,omitempty"`
	RemovedEdges  []string `json:"removedEdges,omitempty"`
	ModifiedEdges []string `json:"modifiedEdges,omitempty"`
}

// Empty reports whether the two snapshots were equal
func (s Summary) Empty() bool {
	return len(s.AddedNodes)+len(s.RemovedNodes)+len(s.ModifiedNodes)+
		len(s.AddedEdges)+len(s.RemovedEdges)+len(s.ModifiedEdges) == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("nodes +%d -%d ~%d, edges +%d -%d ~%d",
		len(s.AddedNodes), len(s.RemovedNodes), len(s.ModifiedNodes),
		len(s.AddedEdges), len(s.RemovedEdges), len(s.ModifiedEdges))
}

// Diff compares two snapshots by id. Ids are reported in the order they appear in
// the snapshot that contains them.
func Diff(old, cur model.Graph) Summary {
	var s Summary

	oldNodes := make(map[string]model.Node, len(old.Nodes))
	for _, n := range old.Nodes {
		oldNodes[n.ID] = n
	}
	curNodes := make(map[string]bool, len(cur.Nodes))
	for _, n := range cur.Nodes {
		curNodes[n.ID] = true
		prev, ok := oldNodes[n.ID]
		switch {
		case !ok:
			s.AddedNodes = append(s.AddedNodes, n.ID)
		case !nodesEqual(prev, n):
			s.ModifiedNodes = append(s.ModifiedNodes, n.ID)
		}
	}
	for _, n := range old.Nodes {
		if !curNodes[n.ID] {
			s.RemovedNodes = append(s.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]model.Edge, len(old.Edges))
	for _, e := range old.Edges {
		oldEdges[e.ID] = e
	}
	curEdges := make(map[string]bool, len(cur.Edges))
	for _, e := range cur.Edges {
		curEdges[e.ID] = true
		prev, ok := oldEdges[e.ID]
		switch {
		case !ok:
			s.AddedEdges = append(s.AddedEdges, e.ID)
		case prev != e:
			s.ModifiedEdges = append(s.ModifiedEdges, e.ID)
		}
	}
	for _, e := range old.Edges {
		if !curEdges[e.ID] {
			s.RemovedEdges = append(s.RemovedEdges, e.ID)
		}
	}

	return s
}

// nodesEqual compares every field, following Measured and the payload by value
func nodesEqual(a, b model.Node) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Position != b.Position ||
		a.Selected != b.Selected || a.Dragging != b.Dragging {
		return false
	}
	if (a.Measured == nil) != (b.Measured == nil) {
		return false
	}
	if a.Measured != nil && *a.Measured != *b.Measured {
		return false
	}
	return maps.EqualFunc(a.Data, b.Data, func(x, y any) bool {
		return fmt.Sprint(x) == fmt.Sprint(y)
	})
}
