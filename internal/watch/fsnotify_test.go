package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFsnotifyWatcherDetectsFileCreate(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Options{DebounceWindow: 30 * time.Millisecond, EventBufferSize: 16})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.go"), []byte("package main\n"), 0o644))

	select {
	case batch := <-w.Events():
		found := false
		for _, evt := range batch {
			if evt.Path == "new.go" {
				found = true
			}
		}
		require.True(t, found, "expected new.go in batch %v", batch)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for create event")
	}
}

func TestFsnotifyWatcherConfigFileChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("node_modules\n"), 0o644))

	w, err := New(Options{DebounceWindow: 30 * time.Millisecond, EventBufferSize: 16})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("dist\n"), 0o644))

	select {
	case batch := <-w.Events():
		require.Len(t, batch, 1)
		require.Equal(t, OpConfigChange, batch[0].Operation)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for config-change event")
	}
}

func TestFsnotifyWatcherStopClosesChannels(t *testing.T) {
	dir := t.TempDir()
	w, err := New(DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop()) // idempotent

	_, ok := <-w.Events()
	require.False(t, ok)
}
