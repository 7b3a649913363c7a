package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Instructions serves the contents of an instruction file and keeps them
// fresh while the process runs, so edits take effect without a restart.
// A missing or unreadable file degrades to the empty string rather than
// failing the turn.
type Instructions struct {
	path string

	mu       sync.RWMutex
	contents string
}

// NewInstructions loads the file at path. An empty path yields an empty,
// static instruction set.
func NewInstructions(path string) *Instructions {
	ins := &Instructions{path: path}
	ins.Reload()
	return ins
}

// Get returns the current instruction contents.
func (i *Instructions) Get() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.contents
}

// Reload re-reads the file from disk.
func (i *Instructions) Reload() {
	if i.path == "" {
		return
	}
	data, err := os.ReadFile(i.path)
	if err != nil {
		return
	}
	i.mu.Lock()
	i.contents = string(data)
	i.mu.Unlock()
}

// Watch reloads the file whenever it changes, until ctx is done. Watching
// the parent directory survives editors that replace the file on save.
func (i *Instructions) Watch(ctx context.Context) error {
	if i.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(i.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Name != i.path {
					continue
				}
				if evt.Op.Has(fsnotify.Write) || evt.Op.Has(fsnotify.Create) || evt.Op.Has(fsnotify.Rename) {
					i.Reload()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
