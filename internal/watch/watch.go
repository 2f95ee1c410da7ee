// Package watch turns filesystem changes in a project directory into
// interaction events, for EasyEDA projects saved locally.
package watch

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports edits under a directory tree.
type Watcher struct {
	fw      *fsnotify.Watcher
	onEvent func()

	done chan struct{}
	wg   sync.WaitGroup
}

// New watches dir and all its subdirectories. onEvent is called from the
// watcher goroutine once Start has been called.
func New(dir string, onEvent func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fw: fw, onEvent: onEvent, done: make(chan struct{})}
	if err := w.addTree(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the event pump in a goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

// Close stops the pump and releases the watches.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !Relevant(ev) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				log.Printf("watch: add %s: %v", ev.Name, err)
			}
		}
	}
	w.onEvent()
}

// Relevant reports whether ev counts as a user edit.
// Chmod-only events and dotfiles (editor swap and lock files) do not.
func Relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}
