package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerSingleEventPassesThrough(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	defer d.Stop()

	d.Add(FileEvent{Path: "main.go", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		require.Equal(t, "main.go", events[0].Path)
		require.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerCreateThenModifyStaysCreate(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	defer d.Stop()

	d.Add(FileEvent{Path: "a.go", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "a.go", Operation: OpModify, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		require.Equal(t, OpCreate, events[0].Operation)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerCreateThenDeleteCancels(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	defer d.Stop()

	d.Add(FileEvent{Path: "temp.go", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "temp.go", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no event, got %v", events)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerDeleteThenCreateBecomesModify(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	defer d.Stop()

	d.Add(FileEvent{Path: "b.go", Operation: OpDelete, Timestamp: time.Now()})
	d.Add(FileEvent{Path: "b.go", Operation: OpCreate, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		require.Equal(t, OpModify, events[0].Operation)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerConfigChangeWinsOverPriorOps(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	defer d.Stop()

	d.Add(FileEvent{Path: ".gitignore", Operation: OpModify, Timestamp: time.Now()})
	d.Add(FileEvent{Path: ".gitignore", Operation: OpConfigChange, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		require.Equal(t, OpConfigChange, events[0].Operation)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncerStopClosesOutput(t *testing.T) {
	d := newDebouncer(30*time.Millisecond, 10)
	d.Stop()
	d.Stop() // idempotent

	_, ok := <-d.Output()
	require.False(t, ok)
}
