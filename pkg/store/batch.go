package store

import (
	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/logging"
	"github.com/ritzau/dag-ui/pkg/model"
)

// Result is the outcome of applying a Batch
type Result struct {
	NodeDiagnostics []changes.Diagnostic
	EdgeDiagnostics []changes.Diagnostic
	Connected       []model.Edge
	Added           []model.Node
	Errors          []error // rejected connections and failed add-node actions
}

// Skipped returns the number of changes and actions that had no effect
func (r Result) Skipped() int {
	return len(r.NodeDiagnostics) + len(r.EdgeDiagnostics) + len(r.Errors)
}

// Apply runs one surface turn in the order the surface emits it: node changes,
// edge changes, connections, then add-node clicks. Nothing in it is fatal.
func (s *Store) Apply(b changes.Batch) Result {
	var r Result

	r.NodeDiagnostics = s.OnNodesChange(b.Nodes)
	r.EdgeDiagnostics = s.OnEdgesChange(b.Edges)

	for _, conn := range b.Connect {
		edge, err := s.OnConnect(conn)
		if err != nil {
			logging.WarnContext(s.ctx, "connection rejected", "source", conn.Source, "target", conn.Target, "error", err)
			r.Errors = append(r.Errors, err)
			continue
		}
		r.Connected = append(r.Connected, edge)
	}

	for i := 0; i < b.AddNodes; i++ {
		node, err := s.AddNode("")
		if err != nil {
			logging.WarnContext(s.ctx, "add node failed", "error", err)
			r.Errors = append(r.Errors, err)
			continue
		}
		r.Added = append(r.Added, node)
	}

	logging.InfoContext(s.ctx, "batch applied",
		"nodeChanges", len(b.Nodes),
		"edgeChanges", len(b.Edges),
		"connected", len(r.Connected),
		"added", len(r.Added),
		"skipped", r.Skipped(),
	)
	return r
}
