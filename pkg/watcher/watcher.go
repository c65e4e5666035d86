package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/dag-ui/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	// ChangeTypeBatch is a batch file that was created or rewritten
	ChangeTypeBatch ChangeType = iota
	// ChangeTypeRemoved is a batch file that was deleted or renamed away
	ChangeTypeRemoved
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeBatch:
		return "batch"
	case ChangeTypeRemoved:
		return "removed"
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// BatchExt is the extension of the change batch files a watched directory holds
const BatchExt = ".json"

// flushDelay groups the several write events editors emit for one save
const flushDelay = 100 * time.Millisecond

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a directory for change batch files
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	events   chan ChangeEvent
	stopOnce sync.Once
}

// NewFileWatcher creates a new file system watcher for a batch directory
func NewFileWatcher(dir string) (*FileWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		dir:     dir,
		events:  make(chan ChangeEvent, 100),
	}

	return fw, nil
}

// Start begins watching for file changes. The events channel is closed when
// ctx is done or Stop is called.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(fw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", fw.dir, err)
	}

	logging.InfoContext(ctx, "started watching batch directory", "path", fw.dir)

	// Process events
	go fw.processEvents(ctx)

	return nil
}

// Existing returns the batch files already in the directory, in name order
func (fw *FileWatcher) Existing() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(fw.dir, "*"+BatchExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return paths, nil
}

// classify maps an fsnotify event onto a change type. Only batch files count.
func classify(event fsnotify.Event) (ChangeType, bool) {
	if !strings.HasSuffix(event.Name, BatchExt) || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return 0, false
	}
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return ChangeTypeBatch, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return ChangeTypeRemoved, true
	}
	return 0, false
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.Stop()

	// Batch events to avoid sending one event per write
	pending := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(flushDelay)
	flushTimer.Stop()

	flush := func() {
		for _, t := range []ChangeType{ChangeTypeBatch, ChangeTypeRemoved} {
			if len(pending[t]) == 0 {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Type: t, Paths: pending[t], Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		pending = make(map[ChangeType][]string)
	}

	for {
		select {
		case <-ctx.Done():
			flushTimer.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}

			t, relevant := classify(event)
			if !relevant {
				continue
			}
			logging.TraceContext(ctx, "file event", "path", event.Name, "op", event.Op.String(), "type", t.String())
			pending[t] = append(pending[t], event.Name)
			flushTimer.Reset(flushDelay)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				flush()
				return
			}
			logging.ErrorContext(ctx, "watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher. It is safe to call more than once.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
