package surface

import (
	"context"

	"github.com/ritzau/dag-ui/pkg/logging"
	"github.com/ritzau/dag-ui/pkg/model"
	"github.com/ritzau/dag-ui/pkg/pubsub"
)

// RenderFunc draws one snapshot
type RenderFunc func(g model.Graph) error

// Watch calls render for every snapshot published on sub until ctx is done or
// the subscription closes. When snapshots arrive faster than render keeps up,
// only the newest is drawn. Render errors are logged and do not stop the loop.
func Watch(ctx context.Context, sub pubsub.Subscription, render RenderFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			event = latest(sub, event)

			if err := render(event.Graph); err != nil {
				logging.ErrorContext(ctx, "render failed", "version", event.Version, "error", err)
				continue
			}
			logging.DebugContext(ctx, "rendered snapshot",
				"version", event.Version,
				"event", event.Type,
				"nodes", len(event.Graph.Nodes),
				"edges", len(event.Graph.Edges))
		}
	}
}

// latest drains queued events and returns the newest one
func latest(sub pubsub.Subscription, event pubsub.Event) pubsub.Event {
	for {
		select {
		case next, ok := <-sub.Events():
			if !ok {
				return event
			}
			event = next
		default:
			return event
		}
	}
}
