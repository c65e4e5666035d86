package pubsub

import (
	"context"
	"fmt"
	"sync"

	"github.com/ritzau/dag-ui/pkg/changes"
	"github.com/ritzau/dag-ui/pkg/logging"
	"github.com/ritzau/dag-ui/pkg/model"
)

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // Number of events to buffer (0 = no buffering)
	ReplayAll  bool // If true, replay all buffered events; if false, only replay last event
}

// subscriberQueue is the channel capacity of each subscription
const subscriberQueue = 64

// Broker is an in-process Publisher. Publishing never blocks: a subscriber that
// falls behind loses events, and since each event is a full snapshot it only
// needs the latest one to redraw.
type Broker struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*subscription]bool // topic -> set of subscriptions
	version       map[string]int                    // topic -> version counter
	eventBuffer   map[string][]Event                // topic -> ring buffer of events
	topicConfig   map[string]TopicConfig            // topic -> configuration
	closed        bool
}

var _ Publisher = (*Broker)(nil)

// NewBroker creates a broker with the graph topic replaying its latest snapshot
func NewBroker() *Broker {
	b := &Broker{
		subscriptions: make(map[string]map[*subscription]bool),
		version:       make(map[string]int),
		eventBuffer:   make(map[string][]Event),
		topicConfig:   make(map[string]TopicConfig),
	}
	b.topicConfig[TopicGraph] = TopicConfig{BufferSize: 1}
	return b
}

// ConfigureTopic sets buffering configuration for a topic
func (b *Broker) ConfigureTopic(topic string, config TopicConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topicConfig[topic] = config
}

// Subscribe creates a new subscription to a topic
func (b *Broker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}

	sub := &subscription{
		topic:  topic,
		events: make(chan Event, subscriberQueue),
		done:   make(chan struct{}),
		broker: b,
	}

	if b.subscriptions[topic] == nil {
		b.subscriptions[topic] = make(map[*subscription]bool)
	}
	b.subscriptions[topic][sub] = true

	// Replay while still holding the lock so no publish can slip in between
	config := b.topicConfig[topic]
	replay := b.eventBuffer[topic]
	if !config.ReplayAll && len(replay) > 0 {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("could not replay event to new subscriber", "topic", topic, "version", event.Version)
		}
	}

	b.mu.Unlock()

	if len(replay) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

// Publish sends a snapshot to all subscribers of a topic
func (b *Broker) Publish(topic, eventType string, graph model.Graph, summary changes.Summary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("publisher is closed")
	}

	b.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Graph:   graph,
		Changes: summary,
		Version: b.version[topic],
	}

	config := b.topicConfig[topic]
	if config.BufferSize > 0 {
		buffer := append(b.eventBuffer[topic], event)
		if len(buffer) > config.BufferSize {
			buffer = buffer[len(buffer)-config.BufferSize:]
		}
		b.eventBuffer[topic] = buffer
	}

	for sub := range b.subscriptions[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscription channel full, dropping event", "topic", topic, "version", event.Version)
		}
	}

	return nil
}

// Close shuts down the broker and closes every subscription channel
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscriptions {
		for sub := range subs {
			sub.closeChannel()
		}
	}
	b.subscriptions = make(map[string]map[*subscription]bool)

	return nil
}

// unsubscribe removes a subscription and closes its channel
func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs := b.subscriptions[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subscriptions, sub.topic)
		}
	}
	sub.closeChannel()
}

// subscription implements Subscription
type subscription struct {
	topic   string
	events  chan Event
	done    chan struct{} // closed with events
	broker  *Broker
	closed  bool
	chanOff sync.Once
	mu      sync.Mutex
}

func (s *subscription) Topic() string {
	return s.topic
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

// Close closes the subscription; the events channel is closed once drained of senders
func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.broker.unsubscribe(s)
	return nil
}

// closeChannel must be called with the broker lock held, which excludes Publish
func (s *subscription) closeChannel() {
	s.chanOff.Do(func() {
		close(s.events)
		close(s.done)
	})
}
