// Package changes applies change batches emitted by a rendering surface to
// node and edge sequences. Every function returns a new slice; inputs are
// never modified, so callers can detect changes by comparing snapshots.
package changes

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ritzau/dag-ui/pkg/model"
)

// ChangeType identifies the kind of an atomic change
type ChangeType string

const (
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangePosition   ChangeType = "position"   // nodes only
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions" // nodes only
	ChangeReplace    ChangeType = "replace"
)

var (
	// ErrNotFound marks an update or remove that references an id not in the sequence.
	ErrNotFound = errors.New("element not found")
	// ErrDuplicateID marks an add whose id is already taken.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownChangeKind marks a change kind this package does not understand.
	ErrUnknownChangeKind = errors.New("unknown change kind")
	// ErrInvalidChange marks a change with a missing or inconsistent payload.
	ErrInvalidChange = errors.New("invalid change")
)

// NodeChange is one atomic operation on the node sequence
type NodeChange struct {
	Type       ChangeType        `json:"type"`
	ID         string            `json:"id,omitempty"`
	Item       *model.Node       `json:"item,omitempty"`  // add, replace
	Index      *int              `json:"index,omitempty"` // add: insert position
	Position   *model.Position   `json:"position,omitempty"`
	Dragging   *bool             `json:"dragging,omitempty"`
	Selected   bool              `json:"selected,omitempty"`
	Dimensions *model.Dimensions `json:"dimensions,omitempty"`
}

// EdgeChange is one atomic operation on the edge sequence
type EdgeChange struct {
	Type     ChangeType  `json:"type"`
	ID       string      `json:"id,omitempty"`
	Item     *model.Edge `json:"item,omitempty"`
	Index    *int        `json:"index,omitempty"`
	Selected bool        `json:"selected,omitempty"`
}

// Diagnostic records a change that was skipped. The rest of its batch is still applied.
type Diagnostic struct {
	Index int        // position of the change in its batch
	Kind  ChangeType // kind as received
	ID    string     // element id, if any
	Err   error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("change %d (%s %q): %v", d.Index, d.Kind, d.ID, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// op is a change normalized for the shared apply pass
type op[T any] struct {
	index  int
	kind   ChangeType
	id     string
	add    *T
	at     *int
	remove bool
	update func(*T)
}

// apply runs one pass over items: updates and removes are matched by id against the
// input sequence, adds are checked against it and placed after the pass. Changes in
// one batch therefore never see each other's results.
func apply[T any](items []T, ops []op[T], idOf func(T) string) ([]T, []Diagnostic) {
	var diags []Diagnostic

	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[idOf(it)] = true
	}

	updates := make(map[string][]op[T])
	added := make(map[string]bool)
	var adds []op[T]

	for _, o := range ops {
		if o.add != nil {
			id := idOf(*o.add)
			if present[id] || added[id] {
				diags = append(diags, Diagnostic{Index: o.index, Kind: o.kind, ID: id, Err: ErrDuplicateID})
				continue
			}
			added[id] = true
			adds = append(adds, o)
			continue
		}
		if !present[o.id] {
			diags = append(diags, Diagnostic{Index: o.index, Kind: o.kind, ID: o.id, Err: ErrNotFound})
			continue
		}
		updates[o.id] = append(updates[o.id], o)
	}

	out := make([]T, 0, len(items)+len(adds))
	for _, it := range items {
		removed := false
		for _, o := range updates[idOf(it)] {
			if o.remove {
				removed = true
				break
			}
			o.update(&it)
		}
		if !removed {
			out = append(out, it)
		}
	}

	for _, o := range adds {
		if o.at != nil && *o.at >= 0 && *o.at <= len(out) {
			out = slices.Insert(out, *o.at, *o.add)
		} else {
			out = append(out, *o.add)
		}
	}

	return out, diags
}
