// Package watch flags external edits to the PRD file so the engine can
// reload it between polls.
package watch

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Flag is a mutex-guarded boolean set by the watcher and consumed by the
// engine's poll loop.
type Flag struct {
	mu  sync.Mutex
	set bool
}

// Set marks the flag.
func (f *Flag) Set() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

// Consume returns the flag's value and clears it.
func (f *Flag) Consume() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	was := f.set
	f.set = false
	return was
}

// Watcher watches a single PRD file for changes.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Start watches the parent directory of prdPath (editors often replace the
// file rather than write in place) and sets flag whenever an event touches
// it. Events are matched by canonical path when resolvable, by filename
// otherwise.
func Start(prdPath string, flag *Flag) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	canonical := prdPath
	if resolved, err := filepath.EvalSymlinks(prdPath); err == nil {
		canonical = resolved
	}
	wantName := filepath.Base(prdPath)

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if matchesTarget(ev.Name, canonical, wantName) {
					flag.Set()
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	dir := filepath.Dir(prdPath)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		<-w.done
		return nil, err
	}
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

func matchesTarget(eventPath, canonical, wantName string) bool {
	if resolved, err := filepath.EvalSymlinks(eventPath); err == nil {
		if resolved == canonical {
			return true
		}
	} else if eventPath == canonical {
		// The file may be gone already (rename/remove); fall through to
		// the name check below if the literal paths differ.
		return true
	}
	return filepath.Base(eventPath) == wantName
}

// Exists reports whether the watched file is still present. The engine uses
// it to distinguish an edit from a delete after the flag fires.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
