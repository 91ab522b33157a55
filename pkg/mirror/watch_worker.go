package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long a file must stay quiet before its change is
// delivered. Editors often write a file in several steps.
const DebounceDelay = 50 * time.Millisecond

// Change is a local page edit picked up by the watcher.
type Change struct {
	Name     string // page name
	Path     string // absolute file path
	Markdown string // file content when the change was delivered
}

type watchWorker struct {
	*worker.BaseWorker
	mirror    *Mirror
	changes   chan<- Change
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	done      chan struct{} // closed when run returns
}

func newWatchWorker(m *Mirror, changes chan<- Change) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("mirror-watcher"),
		mirror:     m,
		changes:    changes,
		done:       make(chan struct{}),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Pages are flat, so the root alone is watched.
	if err := watcher.Add(w.mirror.root); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.mirror.root, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(DebounceDelay)
	w.mirror.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, func(ctx context.Context) error {
		defer close(w.done)
		return w.run(ctx)
	})
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"root":              w.mirror.root,
		}
	})
}

// processFilesystemEvent filters an fsnotify event down to page writes and
// hands them to the debouncer.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.mirror.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	rel, err := filepath.Rel(w.mirror.root, event.Name)
	if err != nil {
		return false
	}
	name, ok := w.mirror.pageName(filepath.ToSlash(rel))
	if !ok {
		return false
	}

	path := event.Name
	w.debouncer.add(name, func() {
		w.deliver(ctx, name, path)
	})
	return true
}

// deliver reads the settled file and sends it unless it matches what was
// last synced (our own Pull, or a save with no real edit).
func (w *watchWorker) deliver(ctx context.Context, name, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Renamed away or deleted before it settled.
		w.mirror.logger.Debug("changed file is gone", "path", path, "error", err)
		return
	}
	content := string(data)
	if !w.mirror.changed(name, content) {
		return
	}

	select {
	case w.changes <- Change{Name: name, Path: path, Markdown: content}:
	case <-ctx.Done():
	}
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.mirror.logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			// Stack only at debug level.
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.mirror.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// All timers settle before the caller may close the changes channel.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.mirror.reportError(wErr)
		}
	}
}
