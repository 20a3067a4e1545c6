// Package watch runs the commit flow periodically while a repository is being edited.
//
// Every interval the trigger runs. With an editing delay configured, file
// activity in the working tree postpones a due run until the tree has been
// quiet for that long, so half-written files are not committed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ItsDalk-Lane/gitbatch/internal/constants"
	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// TriggerFunc is the work run on every due tick.
type TriggerFunc func(ctx context.Context) error

// Watcher schedules TriggerFunc runs.
type Watcher struct {
	root         string
	interval     time.Duration
	editingDelay time.Duration
	trigger      TriggerFunc
	logger       zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the time between runs.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithEditingDelay sets how long the tree must be quiet before a due run.
// Zero disables file watching.
func WithEditingDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.editingDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher for the working tree at root.
func New(root string, trigger TriggerFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:         root,
		interval:     constants.DefaultWatchInterval,
		editingDelay: constants.DefaultEditingDelay,
		trigger:      trigger,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done. Trigger errors are logged and the loop
// continues. Run returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("watch interval must be positive: %w", gberrors.ErrConfigInvalidWatch)
	}

	if w.editingDelay <= 0 {
		return w.loop(ctx, nil)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}
	return w.loop(ctx, fw)
}

// loop runs the schedule. fw is nil when file activity is not watched.
func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw != nil {
		events, errs = fw.Events, fw.Errors
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// quiet fires once a postponed run may go ahead. It is nil while no run is pending.
	var (
		quiet        <-chan time.Time
		quietTimer   *time.Timer
		lastActivity time.Time
	)
	defer func() {
		if quietTimer != nil {
			quietTimer.Stop()
		}
	}()

	postpone := func(d time.Duration) {
		if quietTimer == nil {
			quietTimer = time.NewTimer(d)
		} else {
			quietTimer.Reset(d)
		}
		quiet = quietTimer.C
	}

	w.logger.Info().
		Str("root", w.root).
		Dur("interval", w.interval).
		Dur("editing_delay", w.editingDelay).
		Msg("watching repository")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if w.ignored(ev.Name) {
				continue
			}
			lastActivity = time.Now()
			if ev.Has(fsnotify.Create) {
				// New directories are not watched automatically.
				_ = w.addTree(fw, ev.Name)
			}
			if quiet != nil {
				postpone(w.editingDelay)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.Warn().Err(err).Msg("file watcher error")

		case <-ticker.C:
			if quiet != nil {
				continue
			}
			if idle := time.Since(lastActivity); w.editingDelay > 0 && idle < w.editingDelay {
				w.logger.Debug().Dur("wait", w.editingDelay-idle).Msg("files are being edited, postponing commit")
				postpone(w.editingDelay - idle)
				continue
			}
			w.fire(ctx)

		case <-quiet:
			quiet = nil
			w.fire(ctx)
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if err := w.trigger(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error().Err(err).Msg("scheduled commit failed")
	}
}

// addTree watches dir and every directory below it, skipping .git.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		// Vanished or unreadable entries are skipped.
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if addErr := fw.Add(path); addErr != nil {
			w.logger.Debug().Err(addErr).Str("dir", path).Msg("cannot watch directory")
		}
		return nil
	})
}

// ignored reports whether path lies inside a .git directory.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}
