package lifecycle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortFile_WriteRead(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "codeindexd.port")

	pf := NewPortFile(path)
	require.NoError(t, pf.Write(PortInfo{PID: 42, Addr: "127.0.0.1", Port: 8731}))

	info, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 42, info.PID)
	assert.Equal(t, "127.0.0.1", info.Addr)
	assert.Equal(t, 8731, info.Port)
}

func TestPortFile_Read_Missing(t *testing.T) {
	tmpDir := t.TempDir()
	pf := NewPortFile(filepath.Join(tmpDir, "nope.port"))
	_, err := pf.Read()
	assert.Error(t, err)
}

func TestPortFile_Remove_MissingIsNotError(t *testing.T) {
	tmpDir := t.TempDir()
	pf := NewPortFile(filepath.Join(tmpDir, "nope.port"))
	assert.NoError(t, pf.Remove())
}
