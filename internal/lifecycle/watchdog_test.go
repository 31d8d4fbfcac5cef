package lifecycle

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchdog_ExpiresAfterTimeout(t *testing.T) {
	var fired atomic.Bool
	wd := NewWatchdog(20*time.Millisecond, time.Hour, func() { fired.Store(true) })
	wd.Start()
	defer wd.Stop()

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}

func TestWatchdog_TouchRearms(t *testing.T) {
	var fired atomic.Bool
	wd := NewWatchdog(40*time.Millisecond, time.Hour, func() { fired.Store(true) })
	wd.Start()
	defer wd.Stop()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		wd.Touch()
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, fired.Load(), "touch should have kept rearming the timer")
}

func TestWatchdog_StopPreventsExpiry(t *testing.T) {
	var fired atomic.Bool
	wd := NewWatchdog(20*time.Millisecond, time.Hour, func() { fired.Store(true) })
	wd.Start()
	wd.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestWatchdog_HeartbeatBackstop(t *testing.T) {
	var fired atomic.Bool
	// The timer is an hour away, so only a heartbeat tick can notice that
	// the backdated last touch is older than the timeout.
	wd := NewWatchdog(time.Hour, 10*time.Millisecond, func() { fired.Store(true) })
	wd.lastTouch = time.Now().Add(-2 * time.Hour)
	wd.Start()
	defer wd.Stop()

	require.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}
