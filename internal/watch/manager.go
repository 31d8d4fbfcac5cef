package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/agentindex/codeindexd/internal/ignore"
	"github.com/agentindex/codeindexd/internal/imports"
)

// Syncer is the subset of syncengine.Engine the manager drives. Kept as an
// interface so tests can fake it without a real config/vector-store/db.
type Syncer interface {
	MarkDirty(projectPath string)
	SyncProjectWithDiff(ctx context.Context, projectPath string, forceFullSync bool) error
}

// ActivityFunc is called on every observed filesystem event, to refresh the
// inactivity watchdog's lastActivityTime.
type ActivityFunc func()

// Manager owns one Watcher per registered project root and turns its
// debounced events into syncengine calls, per spec.md §4.10's data flow:
// "Watcher → dirty flag → debounced sync".
type Manager struct {
	ctx        context.Context
	sync       Syncer
	onActivity ActivityFunc
	opts       Options

	mu       sync.Mutex
	watchers map[string]Watcher
}

// NewManager returns a Manager that dispatches sync calls against syncer.
// onActivity may be nil if no watchdog integration is needed.
func NewManager(ctx context.Context, syncer Syncer, onActivity ActivityFunc, opts Options) *Manager {
	return &Manager{
		ctx:        ctx,
		sync:       syncer,
		onActivity: onActivity,
		opts:       opts,
		watchers:   make(map[string]Watcher),
	}
}

// Watch registers and starts a watcher for projectPath, skipping it if one
// is already running. Test-mode callers should simply never call this, per
// spec.md §4.10's "the watcher is skipped in test mode".
func (m *Manager) Watch(projectPath string) error {
	m.mu.Lock()
	if _, exists := m.watchers[projectPath]; exists {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	w, err := New(m.opts)
	if err != nil {
		return err
	}
	if err := w.Start(projectPath); err != nil {
		return err
	}

	m.mu.Lock()
	m.watchers[projectPath] = w
	m.mu.Unlock()

	go m.pump(projectPath, w)
	return nil
}

func (m *Manager) pump(projectPath string, w Watcher) {
	for {
		select {
		case <-m.ctx.Done():
			return
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			m.handleBatch(projectPath, batch)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			slog.Warn("watch.manager.watcher_err", "project", projectPath, "err", err)
		}
	}
}

func (m *Manager) handleBatch(projectPath string, batch []FileEvent) {
	if m.onActivity != nil {
		m.onActivity()
	}

	forceFull := false
	for _, evt := range batch {
		if evt.Operation == OpConfigChange {
			forceFull = true
		}
	}

	if forceFull {
		ignore.ResetConfigCache(projectPath)
		imports.ResetCache(projectPath)
		if err := m.sync.SyncProjectWithDiff(m.ctx, projectPath, true); err != nil {
			slog.Warn("watch.manager.force_sync_err", "project", projectPath, "err", err)
		}
		return
	}

	m.sync.MarkDirty(projectPath)
	if err := m.sync.SyncProjectWithDiff(m.ctx, projectPath, false); err != nil {
		slog.Warn("watch.manager.sync_err", "project", projectPath, "err", err)
	}
}

// Unwatch stops and removes the watcher for projectPath, if any.
func (m *Manager) Unwatch(projectPath string) error {
	m.mu.Lock()
	w, exists := m.watchers[projectPath]
	if exists {
		delete(m.watchers, projectPath)
	}
	m.mu.Unlock()
	if !exists {
		return nil
	}
	return w.Stop()
}

// StopAll stops every registered watcher, for graceful shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	watchers := make([]Watcher, 0, len(m.watchers))
	for path, w := range m.watchers {
		watchers = append(watchers, w)
		delete(m.watchers, path)
	}
	m.mu.Unlock()

	for _, w := range watchers {
		_ = w.Stop()
	}
}
