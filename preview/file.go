// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package preview

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/mockup"
)

// FileSource notifies subscribers when a file is written or replaced. It
// watches the parent directory, since many editors save by renaming a temp
// file over the original.
type FileSource struct {
	path    string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	subs   map[int]func()
	nextID int

	done chan struct{}
	once sync.Once
}

// NewFileSource starts watching path.
func NewFileSource(path string) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("preview: watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("preview: watch %s: %w", filepath.Dir(abs), err)
	}
	fs := &FileSource{
		path:    abs,
		watcher: w,
		subs:    make(map[int]func()),
		done:    make(chan struct{}),
	}
	go fs.run()
	return fs, nil
}

// Subscribe registers fn for change notifications.
func (fs *FileSource) Subscribe(fn func()) func() {
	fs.mu.Lock()
	id := fs.nextID
	fs.nextID++
	fs.subs[id] = fn
	fs.mu.Unlock()
	return func() {
		fs.mu.Lock()
		delete(fs.subs, id)
		fs.mu.Unlock()
	}
}

// Close stops watching.
func (fs *FileSource) Close() error {
	var err error
	fs.once.Do(func() {
		err = fs.watcher.Close()
		<-fs.done
	})
	return err
}

func (fs *FileSource) run() {
	defer close(fs.done)
	for {
		select {
		case ev, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fs.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fs.broadcast()
			}
		case err, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
			mockup.Logger().Warn("preview: watch error", "path", fs.path, "err", err)
		}
	}
}

func (fs *FileSource) broadcast() {
	fs.mu.Lock()
	subs := make([]func(), 0, len(fs.subs))
	for _, fn := range fs.subs {
		subs = append(subs, fn)
	}
	fs.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
