// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package corpus

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a FileStore when its file changes on disk.
// The parent directory is watched so editors that replace the file through a
// rename are picked up as well.
type Watcher struct {
	store    *FileStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(err error)
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for a burst of events to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReloadHook registers a function called after every reload.
func WithReloadHook(fn func(err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithWatcherLogger sets the logger for reload and error events.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for store. Call Start to begin watching.
func NewWatcher(store *FileStore, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		store:    store,
		watcher:  fw,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "corpus-watcher", "path", store.Path())
	return w, nil
}

// Start begins watching until ctx is done or Close is called.
// A watcher meant to outlive a request should be started on a context that
// is not request-scoped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	target := filepath.Clean(w.store.Path())
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("corpus file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			err := w.store.Reload()
			if w.onReload != nil {
				w.onReload(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
