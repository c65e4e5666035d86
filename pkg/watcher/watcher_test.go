package watcher

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		want     ChangeType
		relevant bool
	}{
		{"created batch", fsnotify.Event{Name: "/b/01.json", Op: fsnotify.Create}, ChangeTypeBatch, true},
		{"written batch", fsnotify.Event{Name: "/b/01.json", Op: fsnotify.Write}, ChangeTypeBatch, true},
		{"removed batch", fsnotify.Event{Name: "/b/01.json", Op: fsnotify.Remove}, ChangeTypeRemoved, true},
		{"renamed batch", fsnotify.Event{Name: "/b/01.json", Op: fsnotify.Rename}, ChangeTypeRemoved, true},
		{"chmod only", fsnotify.Event{Name: "/b/01.json", Op: fsnotify.Chmod}, 0, false},
		{"other file", fsnotify.Event{Name: "/b/notes.txt", Op: fsnotify.Write}, 0, false},
		{"hidden editor file", fsnotify.Event{Name: "/b/.01.json", Op: fsnotify.Write}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, relevant := classify(tt.event)
			if relevant != tt.relevant || (relevant && got != tt.want) {
				t.Errorf("classify() = %v, %v; want %v, %v", got, relevant, tt.want, tt.relevant)
			}
		})
	}
}

func TestAnalyzeChanges(t *testing.T) {
	a := AnalyzeChanges(ChangeEvent{Type: ChangeTypeBatch, Paths: []string{"b/02.json", "b/01.json", "b/02.json"}})
	if want := []string{"b/01.json", "b/02.json"}; !reflect.DeepEqual(a.Apply, want) {
		t.Errorf("Apply = %v, want %v", a.Apply, want)
	}
	if len(a.Withdrawn) != 0 {
		t.Errorf("Withdrawn = %v, want none", a.Withdrawn)
	}

	a = AnalyzeChanges(ChangeEvent{Type: ChangeTypeRemoved, Paths: []string{"b/01.json"}})
	if len(a.Apply) != 0 || len(a.Withdrawn) != 1 {
		t.Errorf("Unexpected analysis for removal: %+v", a)
	}
}

func TestDebouncer(t *testing.T) {
	t.Run("burst is merged", func(t *testing.T) {
		input := make(chan ChangeEvent, 10)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		d := NewDebouncer(input, 20*time.Millisecond, time.Second)
		d.Start(ctx)

		input <- ChangeEvent{Type: ChangeTypeRemoved, Paths: []string{"old.json"}}
		input <- ChangeEvent{Type: ChangeTypeBatch, Paths: []string{"a.json"}}
		input <- ChangeEvent{Type: ChangeTypeBatch, Paths: []string{"b.json"}}

		first := receive(t, ctx, d.Output())
		if first.Type != ChangeTypeBatch || !reflect.DeepEqual(first.Paths, []string{"a.json", "b.json"}) {
			t.Errorf("Expected merged batch event first, got %v %v", first.Type, first.Paths)
		}
		second := receive(t, ctx, d.Output())
		if second.Type != ChangeTypeRemoved {
			t.Errorf("Expected removal event second, got %v", second.Type)
		}
	})

	t.Run("max wait bounds a steady stream", func(t *testing.T) {
		input := make(chan ChangeEvent)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		d := NewDebouncer(input, 200*time.Millisecond, 50*time.Millisecond)
		d.Start(ctx)

		stop := make(chan struct{})
		defer close(stop)
		go func() {
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					select {
					case input <- ChangeEvent{Type: ChangeTypeBatch, Paths: []string{"a.json"}}:
					case <-stop:
						return
					}
				}
			}
		}()

		event := receive(t, ctx, d.Output())
		if event.Type != ChangeTypeBatch {
			t.Errorf("Expected batch event, got %v", event.Type)
		}
	})

	t.Run("closed input flushes and closes output", func(t *testing.T) {
		input := make(chan ChangeEvent, 1)
		d := NewDebouncer(input, time.Hour, time.Hour)
		d.Start(context.Background())

		input <- ChangeEvent{Type: ChangeTypeBatch, Paths: []string{"a.json"}}
		close(input)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		receive(t, ctx, d.Output())

		select {
		case _, ok := <-d.Output():
			if ok {
				t.Error("Expected output closed after flush")
			}
		case <-ctx.Done():
			t.Fatal("Timeout waiting for output to close")
		}
	})
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(dir)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	path := filepath.Join(dir, "01.json")
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"addNodes":1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	event := receive(t, ctx, fw.Events())
	if event.Type != ChangeTypeBatch {
		t.Errorf("Expected batch event, got %v", event.Type)
	}
	for _, p := range event.Paths {
		if p != path {
			t.Errorf("Unexpected path %s in event", p)
		}
	}

	existing, err := fw.Existing()
	if err != nil || !reflect.DeepEqual(existing, []string{path}) {
		t.Errorf("Existing() = %v, %v", existing, err)
	}

	cancel()
	for range fw.Events() {
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop() after cancel = %v", err)
	}
}

func TestNewFileWatcherRequiresDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.json")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileWatcher(file); err == nil {
		t.Error("Expected error for a file")
	}
	if _, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for a missing directory")
	}
}

func receive(t *testing.T, ctx context.Context, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed before an event arrived")
		}
		return event
	case <-ctx.Done():
		t.Fatal("Timeout waiting for event")
	}
	return ChangeEvent{}
}
