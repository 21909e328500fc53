package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher reports changes below a directory tree. Bursts of events are
// collapsed into one callback after a quiet period.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	onChange func(path string)
	debounce time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) WatcherOption { return func(w *Watcher) { w.debounce = d } }

// WithWatchLogger sets the logger.
func WithWatchLogger(l *slog.Logger) WatcherOption { return func(w *Watcher) { w.logger = l } }

// NewWatcher creates a watcher for root. onChange receives the last path of
// each burst.
func NewWatcher(root string, onChange func(path string), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		fsw:      fsw,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds every directory below root and begins delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		_ = w.fsw.Close()
		return err
	}
	w.wg.Add(1)
	go w.loop(ctx)
	w.logger.Info("Watching docs tree", logfields.Path(w.root))
	return nil
}

// Stop ends delivery and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	var (
		timer *time.Timer
		fire  <-chan time.Time
		last  string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
					}
				}
			}
			last = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			w.logger.Debug("Docs tree changed", logfields.Path(last))
			w.onChange(last)
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// ignored filters editor swap files and hidden entries.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}
