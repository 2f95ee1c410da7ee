package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/p/board.epro", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/p/board.epro", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/p/board.epro", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/p/board.epro", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/p/board.epro", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/p/.board.epro.swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		if got := Relevant(tt.ev); got != tt.want {
			t.Errorf("Relevant(%v): got %v, want %v", tt.ev, got, tt.want)
		}
	}
}

// waitForEvent blocks until ch receives or the deadline passes.
func waitForEvent(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	events := make(chan struct{}, 16)

	w, err := New(dir, func() { events <- struct{}{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "board.epro"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, events)
}

func TestWatcherFollowsNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	events := make(chan struct{}, 64)

	w, err := New(dir, func() { events <- struct{}{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()
	defer w.Close()

	sub := filepath.Join(dir, "sheets")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, events) // the mkdir itself

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	for len(events) > 0 {
		<-events
	}

	if err := os.WriteFile(filepath.Join(sub, "power.esch"), []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForEvent(t, events)
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), func() {}); err == nil {
		t.Error("expected error for missing directory")
	}
}
