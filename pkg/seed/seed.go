// Package seed provides the graph a store starts from.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Default returns a fresh copy of the two-node starter diagram.
// Each call allocates new slices, so stores seeded from it share nothing.
func Default() model.Graph {
	input := model.NewNode("1", "Input", model.Position{X: 5, Y: 5})
	input.Type = "input"
	output := model.NewNode("2", "Output", model.Position{X: 5, Y: 100})
	output.Type = "output"

	return model.Graph{
		Nodes: []model.Node{input, output},
		Edges: []model.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}
}

// Decode reads a seed graph in the snapshot JSON format
func Decode(r io.Reader) (model.Graph, error) {
	var g model.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return model.Graph{}, fmt.Errorf("decoding seed: %w", err)
	}
	for i, n := range g.Nodes {
		if n.ID == "" {
			return model.Graph{}, fmt.Errorf("decoding seed: node %d has no id", i)
		}
	}
	for i, e := range g.Edges {
		if e.ID == "" || e.Source == "" || e.Target == "" {
			return model.Graph{}, fmt.Errorf("decoding seed: edge %d needs id, source and target", i)
		}
	}
	return g, nil
}

// Load reads a seed file, or returns Default when path is empty
func Load(path string) (model.Graph, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Graph{}, fmt.Errorf("opening seed %s: %w", path, err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return model.Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
