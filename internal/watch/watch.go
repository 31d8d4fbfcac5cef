// Package watch implements the per-project filesystem observer (spec.md
// §4.10): a single fsnotify watcher per project root, debounced event
// coalescing, and config-file-change detection. Grounded on
// Aman-CERP-amanmcp/internal/watcher (Watcher interface, Options,
// Debouncer coalescing rules), adapted from that package's fsnotify+polling
// hybrid down to fsnotify-only since spec.md never asks for a polling
// fallback.
package watch

import (
	"time"
)

// Operation classifies a coalesced filesystem event.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
	OpRename
	// OpConfigChange marks a change to .gitignore or .indexer/to-index:
	// the caller must invalidate selection caches and force a full sync.
	OpConfigChange
)

func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one coalesced filesystem change, relative to the watched root.
type FileEvent struct {
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options configures a Watcher.
type Options struct {
	// DebounceWindow coalesces events before emitting. Default 2s per
	// spec.md §4.10 (the teacher's own default of 200ms is too eager for a
	// whole-project resync).
	DebounceWindow time.Duration
	// EventBufferSize bounds the batched-event channel.
	EventBufferSize int
}

// DefaultOptions returns spec.md's defaults.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  2 * time.Second,
		EventBufferSize: 256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = d.DebounceWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}

// ignoredDirNames are skipped when registering fsnotify watches, per spec.md
// §4.10's "fixed set of heavy directories (VCS, node_modules, dist, build,
// various IDE/engine caches)". .indexer itself is still watched, without
// descending into it, so its to-index file is seen.
var ignoredDirNames = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".idea":        true,
	".vscode":      true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"target":       true,
	"bin":          true,
	"obj":          true,
	".next":        true,
	".cache":       true,
	"Library":      true, // Unity
	"Temp":         true, // Unity
	".indexer":     true,
}

// isConfigFile reports whether base names the files spec.md §4.10 says force
// a full sync and a selection-cache invalidation on change.
func isConfigFile(base string) bool {
	return base == ".gitignore" || base == "to-index"
}

// Watcher observes one project root and emits debounced, coalesced events.
type Watcher interface {
	// Start begins watching root. Blocks processing internally via a
	// goroutine; returns once the initial directory registration succeeds.
	Start(root string) error
	// Stop releases all resources. Safe to call multiple times.
	Stop() error
	// Events returns batched, debounced events.
	Events() <-chan []FileEvent
	// Errors returns non-fatal watcher errors.
	Errors() <-chan error
}
