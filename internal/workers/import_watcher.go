package workers

import (
	"context"
	"sync"
	"time"

	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
)

// ImportSource is the import history of one session.
type ImportSource interface {
	Pending() bool
	Refresh(ctx context.Context) error
}

// ImportWatcher polls a session's import history while any operation is
// PENDING or RUNNING, so the dashboard sees it reach SUCCESS or FAILED.
// Each session has at most one watch; a new Watch replaces the old one.
type ImportWatcher struct {
	ctx      context.Context
	interval time.Duration
	deadline time.Duration
	metrics  *metrics.MetricsRegistry

	mu      sync.Mutex
	watches map[string]*watch
	nextID  uint64
}

type watch struct {
	id     uint64
	cancel context.CancelFunc
}

// NewImportWatcher creates a watcher whose watches end with ctx.
func NewImportWatcher(ctx context.Context, interval, deadline time.Duration, m *metrics.MetricsRegistry) *ImportWatcher {
	return &ImportWatcher{
		ctx:      ctx,
		interval: interval,
		deadline: deadline,
		metrics:  m,
		watches:  make(map[string]*watch),
	}
}

// Watch starts polling src for sessionID.
func (w *ImportWatcher) Watch(sessionID string, src ImportSource) {
	ctx, cancel := context.WithTimeout(w.ctx, w.deadline)

	w.mu.Lock()
	if old, ok := w.watches[sessionID]; ok {
		old.cancel()
	}
	w.nextID++
	current := &watch{id: w.nextID, cancel: cancel}
	w.watches[sessionID] = current
	w.mu.Unlock()

	w.metrics.ImportWatchStarted()
	go func() {
		defer w.finish(sessionID, current)
		w.Start(ctx, sessionID, src)
	}()
}

// Stop ends the watch of a session, if any.
func (w *ImportWatcher) Stop(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if current, ok := w.watches[sessionID]; ok {
		current.cancel()
	}
}

// Active returns the number of running watches.
func (w *ImportWatcher) Active() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

func (w *ImportWatcher) finish(sessionID string, current *watch) {
	current.cancel()
	w.metrics.ImportWatchFinished()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watches[sessionID] == current {
		delete(w.watches, sessionID)
	}
}

// Start polls until nothing is pending or ctx ends.
func (w *ImportWatcher) Start(ctx context.Context, sessionID string, src ImportSource) {
	logging.Debug("import watch started", "session_id", sessionID, "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if !src.Pending() {
			logging.Debug("import watch finished", "session_id", sessionID)
			return
		}
		select {
		case <-ctx.Done():
			logging.Info("import watch gave up", "session_id", sessionID, "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := src.Refresh(ctx); err != nil {
				logging.Warn("import history refresh failed", "session_id", sessionID, "error", err)
			}
		}
	}
}
