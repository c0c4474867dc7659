// Package watch drives lyrics lookups from filesystem activity, standing in
// for a tagger host when there isn't one to call us.
package watch

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"go.ayling.dev/lrcside/tags"
)

const DefaultDebounce = 2 * time.Second

type Watcher struct {
	// Debounce is how long a path must stay quiet before Handler runs.
	// Taggers tend to write a file a few times in a row when saving.
	Debounce time.Duration
	Handler  func(path string)

	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Watch watches dirs recursively until ctx is done, calling Handler once per
// audio file which settles. Bursts of events for one path collapse into a
// single call, distinct paths each get their own.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	w.watcher = watcher
	w.timers = map[string]*time.Timer{}

	for _, dir := range dirs {
		if err := w.addTree(dir, false); err != nil {
			return fmt.Errorf("watch %q: %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watching files", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Op.Has(fsnotify.Create) {
			if err := w.addTree(event.Name, true); err != nil {
				slog.Error("watching new dir", "dir", event.Name, "err", err)
			}
		}
		return
	}

	if !tags.CanRead(event.Name) {
		return
	}
	w.bump(event.Name)
}

// addTree watches dir and everything below it. With notify set, audio files
// already inside are bumped too, they may have arrived before the watch did.
func (w *Watcher) addTree(dir string, notify bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("add watch: %w", err)
			}
		case notify && tags.CanRead(path):
			w.bump(path)
		}
		return nil
	})
}

func (w *Watcher) bump(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	debounce := cmp.Or(w.Debounce, DefaultDebounce)
	if t, ok := w.timers[path]; ok {
		t.Reset(debounce)
		return
	}
	w.timers[path] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.Handler(path)
	})
}
