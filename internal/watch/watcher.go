// Package watch reloads file-backed catalogs when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// ErrNotAFile is returned when the entry point is not a local file
var ErrNotAFile = errors.New("entry point is not a local file")

// Reloader is satisfied by state.Engine
type Reloader interface {
	UpdateWithEntrypointURI(ctx context.Context, uri string) error
}

// CatalogWatcher replays an entry-point URI whenever the file it names is
// written. The containing directory is watched so editors that replace the
// file by rename are still seen.
type CatalogWatcher struct {
	uri       string
	path      string
	reloader  Reloader
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    *zap.Logger

	// OnReload is called after every reload attempt (optional)
	OnReload func(err error)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCatalogWatcher creates a watcher for a file entry point
func NewCatalogWatcher(uri string, reloader Reloader, logger *zap.Logger) (*CatalogWatcher, error) {
	path, ok := catalog.FilePath(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, uri)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &CatalogWatcher{
		uri:       uri,
		path:      abs,
		reloader:  reloader,
		watcher:   watcher,
		debouncer: NewDebouncer(100 * time.Millisecond),
		logger:    logger,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching. Reloads run with ctx.
func (cw *CatalogWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	cw.logger.Info("watching catalog", zap.String("path", cw.path))

	cw.debouncer.SetCallback(func() {
		err := cw.reloader.UpdateWithEntrypointURI(ctx, cw.uri)
		if err != nil {
			cw.logger.Warn("catalog reload failed", zap.String("uri", cw.uri), zap.Error(err))
		} else {
			cw.logger.Info("catalog reloaded", zap.String("uri", cw.uri))
		}
		if cw.OnReload != nil {
			cw.OnReload(err)
		}
	})

	cw.wg.Add(1)
	go cw.watch()
	return nil
}

// Stop stops the watcher; it is safe to call more than once
func (cw *CatalogWatcher) Stop() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.stopChan)
		err = cw.watcher.Close()
		cw.wg.Wait()
		cw.debouncer.Stop()
	})
	return err
}

func (cw *CatalogWatcher) watch() {
	defer cw.wg.Done()

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if cw.matches(event) {
				cw.logger.Debug("catalog changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				cw.debouncer.Trigger()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("watch error", zap.Error(err))

		case <-cw.stopChan:
			return
		}
	}
}

// matches reports whether event concerns the watched file
func (cw *CatalogWatcher) matches(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == cw.path
}

// Debouncer coalesces bursts of triggers into one callback after a quiet
// period
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mutex    sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Trigger restarts the quiet period
func (d *Debouncer) Trigger() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.fire)
}

func (d *Debouncer) fire() {
	d.mutex.Lock()
	callback := d.callback
	stopped := d.stopped
	d.mutex.Unlock()

	if callback != nil && !stopped {
		callback()
	}
}

// Stop cancels any pending callback
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
