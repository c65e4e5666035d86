package watcher

import (
	"context"
	"time"

	"github.com/ritzau/dag-ui/pkg/logging"
)

// Debouncer batches rapid file system events so a burst of saved batch files
// is applied as one turn
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A flush happens after quietPeriod
// without events, or maxWait after the first event of a burst at the latest.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run processes events and applies debouncing logic. Timers are only touched
// from this goroutine.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       = stoppedTimer()
		maxWait     = stoppedTimer()
		waiting     bool
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	flush := func() {
		quiet.Stop()
		maxWait.Stop()
		waiting = false

		if eventCount == 0 {
			return
		}

		logging.DebugContext(ctx, "flushing accumulated events", "count", eventCount)

		// Send events in order: new batches first, then removals
		for _, t := range []ChangeType{ChangeTypeBatch, ChangeTypeRemoved} {
			if paths := accumulated[t]; len(paths) > 0 {
				d.output <- ChangeEvent{
					Type:      t,
					Paths:     paths,
					Timestamp: time.Now(),
				}
			}
		}

		// Reset accumulators
		accumulated = make(map[ChangeType][]string)
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			// Accumulate event
			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			// Reset quiet period timer
			quiet.Reset(d.quietPeriod)

			// Start max wait timer on first event
			if !waiting {
				maxWait.Reset(d.maxWait)
				waiting = true
			}

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}
