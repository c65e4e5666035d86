package changes

import (
	"math/rand/v2"
	"testing"

	"github.com/ritzau/dag-ui/pkg/model"
)

func TestConnect(t *testing.T) {
	t.Run("connect on empty edges", func(t *testing.T) {
		got := Connect(model.Connection{Source: "1", Target: "2"}, nil, "e1", model.EdgeOptions{})

		if len(got) != 1 {
			t.Fatalf("Expected 1 edge, got %d", len(got))
		}
		if got[0].Source != "1" || got[0].Target != "2" {
			t.Errorf("Expected edge 1->2, got %s->%s", got[0].Source, got[0].Target)
		}
		if got[0].ID != "e1" {
			t.Errorf("Expected id e1, got %s", got[0].ID)
		}
	})

	t.Run("parallel edges and self-loops are allowed", func(t *testing.T) {
		var edges []model.Edge
		edges = Connect(model.Connection{Source: "1", Target: "2"}, edges, "a", model.EdgeOptions{})
		edges = Connect(model.Connection{Source: "1", Target: "2"}, edges, "b", model.EdgeOptions{})
		edges = Connect(model.Connection{Source: "2", Target: "2"}, edges, "c", model.EdgeOptions{})

		if len(edges) != 3 {
			t.Errorf("Expected 3 edges, got %d", len(edges))
		}
	})

	t.Run("defaults and handles are carried", func(t *testing.T) {
		conn := model.Connection{Source: "1", Target: "2", SourceHandle: "out", TargetHandle: "in"}
		got := Connect(conn, nil, "e", model.EdgeOptions{Animated: true})

		if !got[0].Animated || got[0].SourceHandle != "out" || got[0].TargetHandle != "in" {
			t.Errorf("Unexpected edge %+v", got[0])
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		edges := make([]model.Edge, 1, 4)
		edges[0] = model.Edge{ID: "x"}

		got := Connect(model.Connection{Source: "1", Target: "2"}, edges, "y", model.EdgeOptions{})
		got[0].ID = "changed"

		if edges[0].ID != "x" {
			t.Error("Connect shares the backing array with its input")
		}
	})
}

func TestRandomPositionWithinExtent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	nodes := seedNodes()
	start := len(nodes)

	for i := 0; i < start; i++ {
		pos := RandomPosition(rng, DefaultExtent)
		nodes = AppendNode(nodes, model.NewNode(CountDerivedID(nodes)+"x", "Added node", pos))
	}

	if len(nodes) != 2*start {
		t.Fatalf("Expected %d nodes, got %d", 2*start, len(nodes))
	}
	for _, n := range nodes[start:] {
		if n.Position.X < -DefaultExtent || n.Position.X > DefaultExtent ||
			n.Position.Y < -DefaultExtent || n.Position.Y > DefaultExtent {
			t.Errorf("Node %s at %+v is outside [-200,200]", n.ID, n.Position)
		}
	}

	for i := 0; i < 1000; i++ {
		pos := RandomPosition(rng, DefaultExtent)
		if pos.X < -200 || pos.X > 200 || pos.Y < -200 || pos.Y > 200 {
			t.Fatalf("Sample %d out of range: %+v", i, pos)
		}
	}
}

// The count-derived id scheme collides with seed ids. This test pins the defect
// rather than hiding it: the third node gets id "2", which is already taken.
func TestCountDerivedIDCollides(t *testing.T) {
	nodes := seedNodes()
	edges := []model.Edge{{ID: "e1-2", Source: "1", Target: "2"}}
	rng := rand.New(rand.NewPCG(3, 4))

	id := CountDerivedID(nodes)
	nodes = AppendNode(nodes, model.NewNode(id, "Added node", RandomPosition(rng, DefaultExtent)))

	if len(nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(nodes))
	}
	if nodes[2].ID != "2" {
		t.Fatalf("Expected count-derived id 2, got %s", nodes[2].ID)
	}

	dups := model.DuplicateIDs(nodes)
	if len(dups) != 1 || dups[0] != "2" {
		t.Errorf("Expected id collision on 2 to be flagged, got %v", dups)
	}
	if len(edges) != 1 {
		t.Errorf("Edges should be untouched by addNode")
	}
}
