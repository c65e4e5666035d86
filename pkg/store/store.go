// Package store holds the diagram state: two insertion-ordered sequences that
// are replaced wholesale on every update, never modified in place.
package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/dag"
	"github.com/ritzau/dag-ui/pkg/ids"
	"github.com/ritzau/dag-ui/pkg/logging"
	"github.com/ritzau/dag-ui/pkg/model"
	"github.com/ritzau/dag-ui/pkg/pubsub"
)

// maxIDAttempts bounds retries when a generator hands out an id that is taken
const maxIDAttempts = 16

// DefaultNodeLabel is the label given to nodes created by AddNode with no label
const DefaultNodeLabel = "Added node"

// Store is the graph state store. All methods are safe for concurrent use; each
// update computes a new snapshot from the current one and swaps it in.
type Store struct {
	mu       sync.RWMutex
	snapshot model.Graph

	ctx          context.Context
	nodeIDs      ids.Generator
	edgeIDs      ids.Generator
	rng          *rand.Rand
	extent       float64
	acyclic      bool
	edgeDefaults model.EdgeOptions
	publisher    pubsub.Publisher
}

// Option configures a Store
type Option func(*Store)

// WithNodeIDs sets the generator for AddNode. Defaults to a counter past the seed ids.
func WithNodeIDs(g ids.Generator) Option {
	return func(s *Store) { s.nodeIDs = g }
}

// WithEdgeIDs sets the generator for OnConnect. Defaults to UUIDs.
func WithEdgeIDs(g ids.Generator) Option {
	return func(s *Store) { s.edgeIDs = g }
}

// WithRand sets the source used to place new nodes
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

// WithExtent sets the half-width of the square new nodes are placed in
func WithExtent(extent float64) Option {
	return func(s *Store) { s.extent = extent }
}

// WithAcyclic makes OnConnect reject edges that would close a cycle
func WithAcyclic(enabled bool) Option {
	return func(s *Store) { s.acyclic = enabled }
}

// WithEdgeDefaults sets the options applied to edges created by OnConnect
func WithEdgeDefaults(opts model.EdgeOptions) Option {
	return func(s *Store) { s.edgeDefaults = opts }
}

// WithPublisher publishes every new snapshot on pubsub.TopicGraph
func WithPublisher(p pubsub.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithContext sets the context used for logging, typically one carrying a session id
func WithContext(ctx context.Context) Option {
	return func(s *Store) { s.ctx = ctx }
}

// New creates a store seeded with a deep copy of seed. Node and edge ids must be
// unique and every seed edge must connect two seed nodes.
func New(seed model.Graph, opts ...Option) (*Store, error) {
	if dups := model.DuplicateIDs(seed.Nodes); len(dups) > 0 {
		return nil, fmt.Errorf("seed nodes: %w: %v", changes.ErrDuplicateID, dups)
	}
	if dups := model.DuplicateEdgeIDs(seed.Edges); len(dups) > 0 {
		return nil, fmt.Errorf("seed edges: %w: %v", changes.ErrDuplicateID, dups)
	}
	if dangling := model.DanglingEdges(seed); len(dangling) > 0 {
		e := dangling[0]
		return nil, fmt.Errorf("seed edge %s (%s -> %s): endpoint %w", e.ID, e.Source, e.Target, changes.ErrNotFound)
	}

	s := &Store{
		snapshot: seed.Clone(),
		ctx:      context.Background(),
		extent:   changes.DefaultExtent,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.nodeIDs == nil {
		s.nodeIDs = ids.CounterAfter("", seed.Nodes)
	}
	if s.edgeIDs == nil {
		s.edgeIDs = ids.UUID("edge-")
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	logging.DebugContext(s.ctx, "store seeded", "nodes", len(seed.Nodes), "edges", len(seed.Edges))
	s.publish(pubsub.EventSeeded, model.Graph{}, s.snapshot)

	return s, nil
}

// Snapshot returns a deep copy of the current graph. Callers may modify it freely.
func (s *Store) Snapshot() model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Nodes returns the current node sequence
func (s *Store) Nodes() []model.Node {
	return s.Snapshot().Nodes
}

// Edges returns the current edge sequence
func (s *Store) Edges() []model.Edge {
	return s.Snapshot().Edges
}

// OnNodesChange applies a node change batch. Changes that cannot be applied are
// skipped, logged and returned; they never abort the batch.
func (s *Store) OnNodesChange(batch []changes.NodeChange) []changes.Diagnostic {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	prev := s.snapshot
	nodes, diags := changes.ApplyNodeChanges(batch, prev.Nodes)
	s.snapshot = model.Graph{Nodes: nodes, Edges: prev.Edges}
	s.publish(pubsub.EventNodes, prev, s.snapshot)
	s.mu.Unlock()

	s.report("node", diags)
	return diags
}

// OnEdgesChange applies an edge change batch. Added or replaced edges must
// connect existing nodes.
func (s *Store) OnEdgesChange(batch []changes.EdgeChange) []changes.Diagnostic {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	prev := s.snapshot
	edges, diags := changes.ApplyEdgeChangesWithin(batch, prev.Edges, prev.NodeIDs())
	s.snapshot = model.Graph{Nodes: prev.Nodes, Edges: edges}
	s.publish(pubsub.EventEdges, prev, s.snapshot)
	s.mu.Unlock()

	s.report("edge", diags)
	return diags
}

// OnConnect creates an edge for a connect gesture. Both endpoints must exist.
// Parallel edges and self-loops are accepted unless the store is acyclic.
func (s *Store) OnConnect(conn model.Connection) (model.Edge, error) {
	s.mu.Lock()
	prev := s.snapshot

	present := prev.NodeIDs()
	for _, id := range []string{conn.Source, conn.Target} {
		if !present[id] {
			s.mu.Unlock()
			return model.Edge{}, fmt.Errorf("connect %s -> %s: node %q: %w", conn.Source, conn.Target, id, changes.ErrNotFound)
		}
	}
	if s.acyclic && dag.WouldCreateCycle(prev, conn) {
		s.mu.Unlock()
		return model.Edge{}, fmt.Errorf("connect %s -> %s: %w", conn.Source, conn.Target, dag.ErrCycle)
	}

	id, err := s.freshID(s.edgeIDs, edgeIDSet(prev.Edges))
	if err != nil {
		s.mu.Unlock()
		return model.Edge{}, fmt.Errorf("connect %s -> %s: %w", conn.Source, conn.Target, err)
	}

	edges := changes.Connect(conn, prev.Edges, id, s.edgeDefaults)
	s.snapshot = model.Graph{Nodes: prev.Nodes, Edges: edges}
	s.publish(pubsub.EventConnected, prev, s.snapshot)
	s.mu.Unlock()

	edge := edges[len(edges)-1]
	logging.DebugContext(s.ctx, "edge connected", "id", edge.ID, "source", edge.Source, "target", edge.Target)
	return edge, nil
}

// AddNode appends a node with a fresh store-owned id at a random position
// in [-extent, extent] on both axes.
func (s *Store) AddNode(label string) (model.Node, error) {
	if label == "" {
		label = DefaultNodeLabel
	}

	s.mu.Lock()
	prev := s.snapshot

	id, err := s.freshID(s.nodeIDs, prev.NodeIDs())
	if err != nil {
		s.mu.Unlock()
		return model.Node{}, fmt.Errorf("add node: %w", err)
	}

	node := model.NewNode(id, label, changes.RandomPosition(s.rng, s.extent))
	s.snapshot = model.Graph{Nodes: changes.AppendNode(prev.Nodes, node), Edges: prev.Edges}
	s.publish(pubsub.EventNodeAdded, prev, s.snapshot)
	s.mu.Unlock()

	logging.DebugContext(s.ctx, "node added", "id", node.ID, "x", node.Position.X, "y", node.Position.Y)
	return node.Clone(), nil
}

// freshID asks gen for ids until one is not in taken. Must be called with s.mu held.
func (s *Store) freshID(gen ids.Generator, taken map[string]bool) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := gen.Next()
		if id != "" && !taken[id] {
			return id, nil
		}
		logging.WarnContext(s.ctx, "generated id already taken", "id", id, "attempt", attempt+1)
	}
	return "", fmt.Errorf("no free id after %d attempts: %w", maxIDAttempts, changes.ErrDuplicateID)
}

func edgeIDSet(edges []model.Edge) map[string]bool {
	set := make(map[string]bool, len(edges))
	for _, e := range edges {
		set[e.ID] = true
	}
	return set
}

// report logs skipped changes. Unknown kinds are warnings since they point at a
// surface newer than this store; stale ids are routine during drags.
func (s *Store) report(collection string, diags []changes.Diagnostic) {
	for _, d := range diags {
		args := []any{"collection", collection, "index", d.Index, "kind", string(d.Kind), "id", d.ID, "error", d.Err}
		if errors.Is(d.Err, changes.ErrUnknownChangeKind) || errors.Is(d.Err, changes.ErrInvalidChange) {
			logging.WarnContext(s.ctx, "ignored change", args...)
		} else {
			logging.DebugContext(s.ctx, "skipped change", args...)
		}
	}
}

// publish must be called with s.mu held so versions follow snapshot order.
// Subscribers get their own copy of the snapshot.
func (s *Store) publish(eventType string, prev, cur model.Graph) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(pubsub.TopicGraph, eventType, cur.Clone(), changes.Diff(prev, cur)); err != nil {
		logging.WarnContext(s.ctx, "failed to publish snapshot", "event", eventType, "error", err)
	}
}
