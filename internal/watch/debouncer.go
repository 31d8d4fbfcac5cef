package watch

import (
	"log/slog"
	"sync"
	"time"
)

// debouncer coalesces rapid events per path within a time window, following
// the teacher's coalescing rules: CREATE+MODIFY=CREATE, CREATE+DELETE=drop,
// MODIFY+DELETE=DELETE, DELETE+CREATE=MODIFY. Config-file events bypass
// coalescing against unrelated ops: the first OpConfigChange seen for a path
// always wins, since forcing a full sync is never safe to downgrade.
type debouncer struct {
	window  time.Duration
	mu      sync.Mutex
	pending map[string]pendingEvent
	timer   *time.Timer
	output  chan []FileEvent
	stopped bool
}

type pendingEvent struct {
	event   FileEvent
	firstOp Operation
}

func newDebouncer(window time.Duration, bufferSize int) *debouncer {
	return &debouncer{
		window:  window,
		pending: make(map[string]pendingEvent),
		output:  make(chan []FileEvent, bufferSize),
	}
}

func (d *debouncer) Add(event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if existing, ok := d.pending[event.Path]; ok {
		merged, keep := coalesce(existing, event)
		if !keep {
			delete(d.pending, event.Path)
		} else {
			d.pending[event.Path] = merged
		}
	} else {
		d.pending[event.Path] = pendingEvent{event: event, firstOp: event.Operation}
	}

	d.scheduleFlush()
}

func coalesce(existing pendingEvent, next FileEvent) (pendingEvent, bool) {
	if existing.firstOp == OpConfigChange {
		return existing, true
	}
	if next.Operation == OpConfigChange {
		return pendingEvent{event: next, firstOp: OpConfigChange}, true
	}

	switch existing.firstOp {
	case OpCreate:
		switch next.Operation {
		case OpModify:
			return existing, true
		case OpDelete:
			return pendingEvent{}, false
		default:
			return pendingEvent{event: next, firstOp: next.Operation}, true
		}
	case OpModify:
		return pendingEvent{event: next, firstOp: next.Operation}, true
	case OpDelete:
		if next.Operation == OpCreate {
			modified := next
			modified.Operation = OpModify
			return pendingEvent{event: modified, firstOp: OpModify}, true
		}
		return pendingEvent{event: next, firstOp: next.Operation}, true
	default:
		return pendingEvent{event: next, firstOp: next.Operation}, true
	}
}

func (d *debouncer) scheduleFlush() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return
	}

	events := make([]FileEvent, 0, len(d.pending))
	for _, pe := range d.pending {
		events = append(events, pe.event)
	}
	d.pending = make(map[string]pendingEvent)

	select {
	case d.output <- events:
	default:
		slog.Warn("watch.debouncer.output_full", "batch_size", len(events))
	}
}

func (d *debouncer) Output() <-chan []FileEvent {
	return d.output
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.output)
}
