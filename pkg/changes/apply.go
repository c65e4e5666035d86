package changes

import (
	"fmt"

	"github.com/ritzau/dag-ui/pkg/model"
)

func nodeID(n model.Node) string { return n.ID }
func edgeID(e model.Edge) string { return e.ID }

// ApplyNodeChanges returns the node sequence that results from applying batch to nodes.
// Changes that cannot be applied are skipped and reported as diagnostics.
func ApplyNodeChanges(batch []NodeChange, nodes []model.Node) ([]model.Node, []Diagnostic) {
	ops := make([]op[model.Node], 0, len(batch))
	var diags []Diagnostic

	for i, c := range batch {
		o := op[model.Node]{index: i, kind: c.Type, id: c.ID}

		switch c.Type {
		case ChangeAdd:
			if c.Item == nil || c.Item.ID == "" {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrInvalidChange})
				continue
			}
			item := c.Item.Clone()
			o.add = &item
			o.at = c.Index

		case ChangeRemove:
			o.remove = true

		case ChangePosition:
			pos, dragging := c.Position, c.Dragging
			o.update = func(n *model.Node) {
				if pos != nil {
					n.Position = *pos
				}
				if dragging != nil {
					n.Dragging = *dragging
				}
			}

		case ChangeSelect:
			selected := c.Selected
			o.update = func(n *model.Node) { n.Selected = selected }

		case ChangeDimensions:
			if c.Dimensions == nil {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrInvalidChange})
				continue
			}
			dims := *c.Dimensions
			o.update = func(n *model.Node) { n.Measured = &dims }

		case ChangeReplace:
			if c.Item == nil || c.Item.ID != c.ID {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrInvalidChange})
				continue
			}
			item := c.Item.Clone()
			o.update = func(n *model.Node) { *n = item }

		default:
			diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrUnknownChangeKind})
			continue
		}

		ops = append(ops, o)
	}

	out, applyDiags := apply(nodes, ops, nodeID)
	return out, mergeDiagnostics(diags, applyDiags)
}

// ApplyEdgeChanges is the edge counterpart of ApplyNodeChanges.
// Position and dimensions changes do not exist for edges and are reported as unknown.
// Endpoints of added edges are not checked; see ApplyEdgeChangesWithin.
func ApplyEdgeChanges(batch []EdgeChange, edges []model.Edge) ([]model.Edge, []Diagnostic) {
	return ApplyEdgeChangesWithin(batch, edges, nil)
}

// ApplyEdgeChangesWithin is ApplyEdgeChanges for edges that must connect nodes in
// nodeIDs. An add or replace whose source or target is missing is skipped with a
// diagnostic wrapping ErrNotFound. A nil nodeIDs disables the check.
func ApplyEdgeChangesWithin(batch []EdgeChange, edges []model.Edge, nodeIDs map[string]bool) ([]model.Edge, []Diagnostic) {
	ops := make([]op[model.Edge], 0, len(batch))
	var diags []Diagnostic

	for i, c := range batch {
		o := op[model.Edge]{index: i, kind: c.Type, id: c.ID}

		switch c.Type {
		case ChangeAdd:
			if c.Item == nil || c.Item.ID == "" {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrInvalidChange})
				continue
			}
			if err := checkEndpoints(*c.Item, nodeIDs); err != nil {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.Item.ID, Err: err})
				continue
			}
			item := *c.Item
			o.add = &item
			o.at = c.Index

		case ChangeRemove:
			o.remove = true

		case ChangeSelect:
			selected := c.Selected
			o.update = func(e *model.Edge) { e.Selected = selected }

		case ChangeReplace:
			if c.Item == nil || c.Item.ID != c.ID {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrInvalidChange})
				continue
			}
			if err := checkEndpoints(*c.Item, nodeIDs); err != nil {
				diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: err})
				continue
			}
			item := *c.Item
			o.update = func(e *model.Edge) { *e = item }

		default:
			diags = append(diags, Diagnostic{Index: i, Kind: c.Type, ID: c.ID, Err: ErrUnknownChangeKind})
			continue
		}

		ops = append(ops, o)
	}

	out, applyDiags := apply(edges, ops, edgeID)
	return out, mergeDiagnostics(diags, applyDiags)
}

// checkEndpoints returns an error wrapping ErrNotFound for the first endpoint of e
// missing from nodeIDs
func checkEndpoints(e model.Edge, nodeIDs map[string]bool) error {
	if nodeIDs == nil {
		return nil
	}
	for _, id := range []string{e.Source, e.Target} {
		if !nodeIDs[id] {
			return fmt.Errorf("endpoint %q: %w", id, ErrNotFound)
		}
	}
	return nil
}

// mergeDiagnostics interleaves two index-ordered diagnostic lists back into batch order
func mergeDiagnostics(a, b []Diagnostic) []Diagnostic {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make([]Diagnostic, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Index <= b[j].Index {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
