package changes

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeBatch(t *testing.T) {
	input := `{
		"nodes": [
			{"type": "position", "id": "1", "position": {"x": 10, "y": 20}, "dragging": false},
			{"type": "future-kind", "id": "1"}
		],
		"edges": [{"type": "remove", "id": "e1-2"}],
		"connect": [{"source": "1", "target": "2"}],
		"addNodes": 2,
		"surfaceVersion": "12.3"
	}`

	b, err := DecodeBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}

	if len(b.Nodes) != 2 || b.Nodes[0].Position.X != 10 || b.Nodes[0].Dragging == nil {
		t.Errorf("Unexpected node changes: %+v", b.Nodes)
	}
	if b.Nodes[1].Type != "future-kind" {
		t.Errorf("Unknown kinds should decode as-is, got %q", b.Nodes[1].Type)
	}
	if len(b.Edges) != 1 || len(b.Connect) != 1 || b.AddNodes != 2 {
		t.Errorf("Unexpected batch: %+v", b)
	}

	_, diags := ApplyNodeChanges(b.Nodes, seedNodes())
	if len(diags) != 1 || !errors.Is(diags[0], ErrUnknownChangeKind) {
		t.Errorf("Expected one unknown-kind diagnostic, got %v", diags)
	}
}

func TestDecodeBatch_Errors(t *testing.T) {
	if _, err := DecodeBatch(strings.NewReader(`{"nodes": [`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
	if _, err := DecodeBatch(strings.NewReader(`{"addNodes": -1}`)); err == nil {
		t.Error("Expected error for negative addNodes")
	}
}

func TestReadBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	if err := os.WriteFile(path, []byte(`{"addNodes": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := ReadBatch(path)
	if err != nil {
		t.Fatalf("ReadBatch() error = %v", err)
	}
	if b.AddNodes != 1 || b.Empty() {
		t.Errorf("Unexpected batch %+v", b)
	}

	if _, err := ReadBatch(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
