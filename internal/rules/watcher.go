package rules

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"hookify/pkg/hooklog"
)

// DefaultDebounce batches rapid editor saves into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher invokes a callback when rule files change, debounced so a burst
// of writes triggers one invocation after the burst settles.
type Watcher struct {
	fw       *fsnotify.Watcher
	log      *hooklog.Logger
	debounce time.Duration
	onChange func()

	mu        sync.Mutex
	lastEvent time.Time
	dirty     bool
	running   bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher builds a watcher. A zero debounce uses the default; log may
// be nil.
func NewWatcher(log *hooklog.Logger, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fw:       fw,
		log:      log,
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch adds directories to the watch set. Directories that do not exist
// are skipped with a logged warning; rule dirs are often created later.
func (w *Watcher) Watch(dirs ...string) {
	for _, dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			w.log.Warning("cannot watch directory", map[string]any{
				"dir":    dir,
				"reason": err.Error(),
			})
		}
	}
}

// Start begins the event loop. Non-blocking; Stop or ctx cancellation ends
// it.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop ends the loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.fw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ruleFileEvent(ev) {
				continue
			}
			w.log.Debug("rule file changed", map[string]any{"file": ev.Name, "op": ev.Op.String()})
			w.mu.Lock()
			w.lastEvent = time.Now()
			w.dirty = true
			w.mu.Unlock()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warning("watch error", map[string]any{"reason": err.Error()})

		case <-ticker.C:
			w.mu.Lock()
			fire := w.dirty && time.Since(w.lastEvent) >= w.debounce
			if fire {
				w.dirty = false
			}
			w.mu.Unlock()
			if fire {
				w.onChange()
			}
		}
	}
}

// ruleFileEvent filters for markdown writes, creations, removals, and
// renames. Chmod noise is ignored.
func ruleFileEvent(ev fsnotify.Event) bool {
	if !strings.HasSuffix(ev.Name, ".md") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
