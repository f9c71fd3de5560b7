// Package watch follows a checkpoint directory while another fibcalc
// process writes to it and reports each new snapshot.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/fibcalc/internal/domain"
	"github.com/bft-labs/fibcalc/internal/ports"
	"github.com/bft-labs/fibcalc/pkg/log"
)

// Config holds options for a Watcher.
type Config struct {
	// DebounceDelay is how long to wait after a file event before loading,
	// so a burst of writes results in one load.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Until stops the watcher once a snapshot at or beyond this index is
	// seen. Zero watches until the context is cancelled.
	Until uint64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// Watcher reports the newest snapshot in a directory whenever it changes.
type Watcher struct {
	dir      string
	store    ports.SnapshotStore
	logger   ports.Logger
	debounce time.Duration
	until    uint64
}

// New creates a watcher over dir that loads snapshots through store.
func New(dir string, store ports.SnapshotStore, cfg Config, logger ports.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		dir:      dir,
		store:    store,
		logger:   logger,
		debounce: cfg.DebounceDelay,
		until:    cfg.Until,
	}
}

// Run blocks until ctx is cancelled or the Until index is reached, calling
// emit once for every snapshot whose index differs from the last one
// emitted. The directory is created if it does not exist yet so a watcher
// can be started before the computation.
func (w *Watcher) Run(ctx context.Context, emit func(domain.Progress)) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching checkpoint directory",
		log.String("dir", w.dir),
		log.Duration("debounce", w.debounce),
	)

	var (
		last    uint64
		emitted bool
	)
	// check loads the newest snapshot and reports whether watching is done.
	check := func() bool {
		p, err := w.store.Load(ctx)
		if err != nil {
			w.logger.Debug("no snapshot to report", log.Err(err))
			return false
		}
		if !emitted || p.Index != last {
			emit(p)
			last, emitted = p.Index, true
		}
		return w.until > 0 && p.Index >= w.until
	}

	if check() {
		return nil
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, _, ok := domain.ParseSnapshotName(filepath.Base(event.Name)); !ok {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case <-fire:
			timer, fire = nil, nil
			if check() {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}
