package changes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ritzau/dag-ui/pkg/model"
)

// Batch is everything a surface can send in one turn: node changes, edge changes,
// connect gestures and a number of add-node clicks.
type Batch struct {
	Nodes    []NodeChange       `json:"nodes,omitempty"`
	Edges    []EdgeChange       `json:"edges,omitempty"`
	Connect  []model.Connection `json:"connect,omitempty"`
	AddNodes int                `json:"addNodes,omitempty"`
}

// Empty reports whether the batch carries nothing to apply
func (b Batch) Empty() bool {
	return len(b.Nodes) == 0 && len(b.Edges) == 0 && len(b.Connect) == 0 && b.AddNodes == 0
}

// DecodeBatch reads one JSON batch. Unknown fields are ignored so newer surfaces
// can send data this version does not use.
func DecodeBatch(r io.Reader) (Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("decoding batch: %w", err)
	}
	if b.AddNodes < 0 {
		return Batch{}, fmt.Errorf("decoding batch: addNodes must not be negative, got %d", b.AddNodes)
	}
	return b, nil
}

// ReadBatch loads a batch from a JSON file
func ReadBatch(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, fmt.Errorf("opening batch %s: %w", path, err)
	}
	defer f.Close()

	b, err := DecodeBatch(f)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
