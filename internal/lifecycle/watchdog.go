package lifecycle

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInactivityTimeout is how long the daemon waits without any watcher
// activity before shutting itself down.
const DefaultInactivityTimeout = 30 * time.Minute

// DefaultHeartbeatInterval is the redundant backstop tick, in case a rearm
// is ever missed (Open Question 2 in DESIGN.md: the timer is rearmed on
// every activity update rather than firing once at startup+timeout).
const DefaultHeartbeatInterval = 5 * time.Minute

// Watchdog shuts the daemon down after a period with no observed activity.
// Touch is wired as watch.Manager's ActivityFunc; every filesystem event
// anywhere in any watched project rearms the inactivity timer.
type Watchdog struct {
	timeout   time.Duration
	heartbeat time.Duration
	onExpire  func()

	mu        sync.Mutex
	timer     *time.Timer
	ticker    *time.Ticker
	lastTouch time.Time
	stopped   bool
	done      chan struct{}
}

// NewWatchdog creates a Watchdog that calls onExpire once either the
// inactivity timer or the heartbeat backstop fires.
func NewWatchdog(timeout, heartbeat time.Duration, onExpire func()) *Watchdog {
	return &Watchdog{
		timeout:   timeout,
		heartbeat: heartbeat,
		onExpire:  onExpire,
		lastTouch: time.Now(),
		done:      make(chan struct{}),
	}
}

// Start arms the inactivity timer and heartbeat ticker.
func (w *Watchdog) Start() {
	w.mu.Lock()
	w.timer = time.NewTimer(w.timeout)
	w.ticker = time.NewTicker(w.heartbeat)
	timerC := w.timer.C
	tickerC := w.ticker.C
	w.mu.Unlock()

	go func() {
		for {
			select {
			case <-timerC:
				slog.Info("lifecycle.watchdog.inactivity_expired", slog.Duration("timeout", w.timeout))
				w.expire()
				return
			case <-tickerC:
				w.mu.Lock()
				idle := time.Since(w.lastTouch)
				w.mu.Unlock()
				if idle >= w.timeout {
					slog.Info("lifecycle.watchdog.heartbeat_expired", slog.Duration("idle", idle))
					w.expire()
					return
				}
			case <-w.done:
				return
			}
		}
	}()
}

// Touch rearms the inactivity timer. Safe to call from any goroutine,
// including concurrently with Stop.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.timer == nil {
		return
	}
	w.lastTouch = time.Now()
	if !w.timer.Stop() {
		select {
		case <-w.timer.C:
		default:
		}
	}
	w.timer.Reset(w.timeout)
}

// Stop disarms the watchdog without calling onExpire, for graceful shutdown
// paths that didn't originate from inactivity.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.mu.Unlock()
	close(w.done)
}

func (w *Watchdog) expire() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.mu.Unlock()
	if w.onExpire != nil {
		w.onExpire()
	}
}
