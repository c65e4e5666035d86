package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/model"
)

func init() {
	color.NoColor = true
}

func seedGraph() model.Graph {
	return model.Graph{
		Nodes: []model.Node{{ID: "1"}, {ID: "2"}},
		Edges: []model.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}
}

func TestPrintReportHealthy(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary(seedGraph())
	s.Rendered = "dag-ui.html"

	PrintReport(&buf, s)

	out := buf.String()
	for _, want := range []string{"Nodes: 2", "Edges: 1", "Acyclic: yes", "Order: 1 → 2", "Rendered: dag-ui.html", "✓"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
	if !s.Healthy() {
		t.Error("Expected seed graph to be healthy")
	}
}

func TestPrintReportProblems(t *testing.T) {
	g := seedGraph()
	g.Nodes = append(g.Nodes, model.Node{ID: "2"})
	g.Edges = append(g.Edges,
		model.Edge{ID: "back", Source: "2", Target: "1"},
		model.Edge{ID: "lost", Source: "1", Target: "9"},
	)

	s := NewSummary(g)
	s.Diagnostics = []changes.Diagnostic{{Index: 0, Kind: "resize", Err: changes.ErrUnknownChangeKind}}
	s.Rejected = []error{errors.New("connect 1 -> 7: not found")}

	var buf bytes.Buffer
	PrintReport(&buf, s)

	out := buf.String()
	for _, want := range []string{"Acyclic: no", "Cycle:", "DUPLICATE NODE IDS: 2", "Dangling edges: lost", "SKIPPED (2)", "connect 1 -> 7"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "✓") || s.Healthy() {
		t.Error("Graph with problems reported as healthy")
	}
}
