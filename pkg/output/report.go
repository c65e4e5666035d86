// Package output prints the terminal summary of a session.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/dag"
	"github.com/ritzau/dag-ui/pkg/model"
)

// Summary is everything the report shows about one run
type Summary struct {
	Graph       model.Graph
	Analysis    dag.Report
	Diagnostics []changes.Diagnostic
	Rejected    []error // connections and add-node actions that failed
	Rendered    string  // path of the rendered page, empty when nothing was written
}

// NewSummary analyzes g and fills in the structural parts of a Summary
func NewSummary(g model.Graph) Summary {
	return Summary{Graph: g, Analysis: dag.Analyze(g)}
}

// PrintReport writes a colored report of the graph state to w
func PrintReport(w io.Writer, s Summary) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "DAG UI - Graph Report")
	bold.Fprintln(w, "=====================")
	fmt.Fprintf(w, "Nodes: %d\n", len(s.Graph.Nodes))
	fmt.Fprintf(w, "Edges: %d\n", len(s.Graph.Edges))
	fmt.Fprintln(w)

	a := s.Analysis
	if a.Acyclic {
		green.Fprintln(w, "Acyclic: yes")
		if len(a.Order) > 0 {
			cyan.Fprintf(w, "  Order: %s\n", strings.Join(a.Order, " → "))
		}
	} else {
		yellow.Fprintln(w, "Acyclic: no")
		for _, cycle := range a.Cycles {
			yellow.Fprintf(w, "  Cycle: %s\n", strings.Join(cycle, " → "))
		}
		if len(a.SelfLoops) > 0 {
			yellow.Fprintf(w, "  Self-loops: %s\n", strings.Join(a.SelfLoops, ", "))
		}
	}
	if len(a.Roots) > 0 {
		fmt.Fprintf(w, "Roots: %s\n", strings.Join(a.Roots, ", "))
	}
	if len(a.Leaves) > 0 {
		fmt.Fprintf(w, "Leaves: %s\n", strings.Join(a.Leaves, ", "))
	}
	fmt.Fprintln(w)

	// Problems in the state itself
	if dups := model.DuplicateIDs(s.Graph.Nodes); len(dups) > 0 {
		red.Fprintf(w, "DUPLICATE NODE IDS: %s\n", strings.Join(dups, ", "))
	}
	if len(a.Dangling) > 0 {
		yellow.Fprintf(w, "Dangling edges: %s\n", strings.Join(a.Dangling, ", "))
		fmt.Fprintf(w, "    Suggestion: remove the edges or restore their nodes\n")
	}

	// Changes that had no effect
	if len(s.Diagnostics) > 0 || len(s.Rejected) > 0 {
		red.Fprintf(w, "SKIPPED (%d):\n", len(s.Diagnostics)+len(s.Rejected))
		for _, d := range s.Diagnostics {
			yellow.Fprintf(w, "  %s\n", d.Error())
		}
		for _, err := range s.Rejected {
			yellow.Fprintf(w, "  %s\n", err)
		}
		fmt.Fprintln(w)
	}

	if s.Rendered != "" {
		cyan.Fprintf(w, "Rendered: %s\n", s.Rendered)
	}

	if s.Healthy() {
		green.Fprintln(w, "✓ Graph is a consistent DAG")
	}
}

// Healthy reports whether the graph is acyclic with unique ids, no dangling
// edges and nothing skipped
func (s Summary) Healthy() bool {
	return s.Analysis.Acyclic &&
		len(s.Analysis.Dangling) == 0 &&
		len(model.DuplicateIDs(s.Graph.Nodes)) == 0 &&
		len(s.Diagnostics) == 0 &&
		len(s.Rejected) == 0
}
