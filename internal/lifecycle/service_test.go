package lifecycle

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AdvertisePort(t *testing.T) {
	tmpDir := t.TempDir()
	svc, _, err := NewService(context.Background(), filepath.Join(tmpDir, "codeindexd.pid"), filepath.Join(tmpDir, "codeindexd.port"))
	require.NoError(t, err)
	defer svc.Stop()

	require.NoError(t, svc.AdvertisePort("127.0.0.1", 9001))
	info, err := svc.portFile.Read()
	require.NoError(t, err)
	assert.Equal(t, 9001, info.Port)
}

func TestService_StopCancelsContextAndRemovesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")
	portPath := filepath.Join(tmpDir, "codeindexd.port")

	svc, runCtx, err := NewService(context.Background(), pidPath, portPath)
	require.NoError(t, err)
	require.NoError(t, svc.AdvertisePort("127.0.0.1", 9001))

	svc.Stop()

	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	select {
	case <-svc.Done():
	case <-time.After(time.Second):
		t.Fatal("service did not report done")
	}

	_, err = NewPIDFile(pidPath).Read()
	assert.ErrorIs(t, err, ErrPIDFileNotFound)
	_, err = NewPortFile(portPath).Read()
	assert.Error(t, err)
}

func TestService_StopIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	svc, _, err := NewService(context.Background(), filepath.Join(tmpDir, "codeindexd.pid"), filepath.Join(tmpDir, "codeindexd.port"))
	require.NoError(t, err)

	svc.Stop()
	assert.NotPanics(t, func() { svc.Stop() })
}

func TestService_RefusesSecondInstance(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")
	portPath := filepath.Join(tmpDir, "codeindexd.port")

	first, _, err := NewService(context.Background(), pidPath, portPath)
	require.NoError(t, err)
	defer first.Stop()

	_, _, err = NewService(context.Background(), pidPath, portPath)
	assert.Error(t, err)
}

func TestService_TouchRearmsWatchdog(t *testing.T) {
	tmpDir := t.TempDir()
	svc, _, err := NewService(context.Background(), filepath.Join(tmpDir, "codeindexd.pid"), filepath.Join(tmpDir, "codeindexd.port"))
	require.NoError(t, err)
	defer svc.Stop()

	svc.watchdog.timeout = 30 * time.Millisecond
	svc.watchdog.heartbeat = time.Hour
	svc.WatchSignals()

	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		svc.Touch()
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-svc.Done():
		t.Fatal("service shut down despite repeated activity")
	default:
	}
}
