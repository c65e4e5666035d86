// Package pubsub carries graph snapshots from the store back to rendering surfaces.
package pubsub

import (
	"context"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/model"
)

// TopicGraph is the topic every store snapshot is published on
const TopicGraph = "graph"

// Event types published on TopicGraph
const (
	EventSeeded    = "seeded"
	EventNodes     = "nodes_changed"
	EventEdges     = "edges_changed"
	EventConnected = "connected"
	EventNodeAdded = "node_added"
)

// Event is one published snapshot
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`    // what caused the snapshot, e.g. "nodes_changed"
	Graph   model.Graph     `json:"graph"`   // full snapshot; never modified after publishing
	Changes changes.Summary `json:"changes"` // difference from the previous snapshot
	Version int             `json:"version"` // per-topic, increases by one per event
}

// Subscription represents a subscriber to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic, eventType string, graph model.Graph, summary changes.Summary) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}
