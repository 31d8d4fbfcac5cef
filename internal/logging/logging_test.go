package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/config"
)

func TestSetupWithFileUsesJSONHandler(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "codeindexd.log")

	logger, cleanup, err := Setup(config.LoggingConfig{Level: "debug", File: path})
	require.NoError(t, err)
	defer cleanup()

	logger.Info("lifecycle.service.test", "k", "v")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"lifecycle.service.test"`)
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("bogus"), parseLevel(""))
}
