package lifecycle

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFile_Write(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")

	pf := NewPIDFile(pidPath)
	require.NoError(t, pf.Write())

	data, err := os.ReadFile(pidPath)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(data))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFile_Read_NotExists(t *testing.T) {
	tmpDir := t.TempDir()
	pf := NewPIDFile(filepath.Join(tmpDir, "nope.pid"))
	_, err := pf.Read()
	assert.ErrorIs(t, err, ErrPIDFileNotFound)
}

func TestPIDFile_IsRunning_StalePID(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")
	// A PID no process will ever hold.
	require.NoError(t, os.WriteFile(pidPath, []byte("999999"), 0644))

	pf := NewPIDFile(pidPath)
	assert.False(t, pf.IsRunning())
}

func TestPIDFile_IsRunning_SelfPID(t *testing.T) {
	tmpDir := t.TempDir()
	pf := NewPIDFile(filepath.Join(tmpDir, "codeindexd.pid"))
	require.NoError(t, pf.Write())
	assert.True(t, pf.IsRunning())
}

func TestAcquireSingleInstance_RefusesWhileRunning(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")

	first, err := AcquireSingleInstance(pidPath)
	require.NoError(t, err)
	defer first.Remove()

	_, err = AcquireSingleInstance(pidPath)
	assert.Error(t, err)
}

func TestAcquireSingleInstance_ReclaimsStale(t *testing.T) {
	tmpDir := t.TempDir()
	pidPath := filepath.Join(tmpDir, "codeindexd.pid")
	require.NoError(t, os.WriteFile(pidPath, []byte("999999"), 0644))

	pf, err := AcquireSingleInstance(pidPath)
	require.NoError(t, err)
	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}
