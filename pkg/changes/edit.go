package changes

import (
	"math/rand/v2"
	"strconv"

	"github.com/ritzau/dag-ui/pkg/model"
)

// DefaultExtent bounds randomly placed nodes to [-DefaultExtent, DefaultExtent] on both axes.
const DefaultExtent = 200.0

// NewEdge builds the edge a connect gesture proposes, applying the surface defaults.
func NewEdge(id string, conn model.Connection, defaults model.EdgeOptions) model.Edge {
	return model.Edge{
		ID:           id,
		Source:       conn.Source,
		Target:       conn.Target,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
		Animated:     defaults.Animated,
	}
}

// Connect appends a new edge for conn with the given fresh id.
// Parallel edges, reversed edges and self-loops are all accepted.
func Connect(conn model.Connection, edges []model.Edge, id string, defaults model.EdgeOptions) []model.Edge {
	out := make([]model.Edge, 0, len(edges)+1)
	out = append(out, edges...)
	return append(out, NewEdge(id, conn, defaults))
}

// AppendNode returns nodes followed by n. It does not check id uniqueness;
// see model.DuplicateIDs.
func AppendNode(nodes []model.Node, n model.Node) []model.Node {
	out := make([]model.Node, 0, len(nodes)+1)
	out = append(out, nodes...)
	return append(out, n)
}

// RandomPosition samples x and y independently and uniformly in [-extent, extent].
func RandomPosition(rng *rand.Rand, extent float64) model.Position {
	return model.Position{
		X: (rng.Float64() - 0.5) * 2 * extent,
		Y: (rng.Float64() - 0.5) * 2 * extent,
	}
}

// CountDerivedID is the id scheme the first board used: the current node count.
// It collides as soon as any node has been removed and is kept only to show that.
func CountDerivedID(nodes []model.Node) string {
	return strconv.Itoa(len(nodes))
}
