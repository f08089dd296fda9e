package am

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/palette/errors"
	"github.com/teranos/palette/logger"
)

// DefaultDebounce collapses the burst of events editors emit on save
const DefaultDebounce = 500 * time.Millisecond

// ReloadCallback receives the freshly loaded config
type ReloadCallback func(*Config) error

// Watcher reloads one config file when it changes on disk
type Watcher struct {
	path     string
	load     func() (*Config, error)
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	callbacks []ReloadCallback
	timer     *time.Timer
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for events to settle
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatcherLogger sets the watcher logger
func WithWatcherLogger(l *zap.SugaredLogger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithLoader replaces how the config is re-read after a change.
// The default reads path alone via LoadFromFile.
func WithLoader(load func() (*Config, error)) WatcherOption {
	return func(w *Watcher) {
		w.load = load
	}
}

// NewWatcher watches path. The parent directory is watched so files
// replaced by rename are still seen.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}

	w := &Watcher{
		path:     abs,
		watcher:  fw,
		debounce: DefaultDebounce,
	}
	w.load = func() (*Config, error) { return LoadFromFile(w.path) }
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logger.Or(w.logger).Named("am-watcher")
	return w, nil
}

// Path is the watched file
func (w *Watcher) Path() string {
	return w.path
}

// OnReload registers a callback run after every successful reload
func (w *Watcher) OnReload(cb ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debugw("config file changed", "file", ev.Name, "op", ev.Op.String())
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload re-reads the file. An invalid file keeps the previous config.
func (w *Watcher) reload() {
	cfg, err := w.load()
	if err != nil {
		w.logger.Warnw("config reload failed, keeping previous config",
			"path", w.path, logger.FieldError, err)
		return
	}
	w.logger.Infow("config reloaded", "path", w.path)

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		if err := cb(cfg); err != nil {
			w.logger.Warnw("config reload callback failed", logger.FieldError, err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// ProjectConfigPath returns the am.toml found from the working directory
// upwards, or "" when there is none
func ProjectConfigPath() string {
	return findProjectConfig()
}
