package ignore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsIndexableDefaultExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "export const A = 1")
	writeFile(t, filepath.Join(dir, "node_modules", "x", "index.js"), "module.exports = {}")

	policy, err := ForProject(dir)
	require.NoError(t, err)

	require.True(t, policy.IsIndexable("src/a.ts"))
	require.True(t, policy.SkipDir("node_modules", "node_modules"))
}

func TestWhitelistEmptyMeansNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".indexer", "to-index"), "# nothing listed\n")
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "x")

	policy, err := ForProject(dir)
	require.NoError(t, err)
	require.False(t, policy.IsIndexable("src/a.ts"))
}

func TestWhitelistDirGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".indexer", "to-index"), "dir: src\next: .ts\n")
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "x")
	writeFile(t, filepath.Join(dir, "other", "b.ts"), "x")

	policy, err := ForProject(dir)
	require.NoError(t, err)
	require.True(t, policy.IsIndexable("src/a.ts"))
	require.False(t, policy.IsIndexable("other/b.ts"))
}

func TestHardExcludeLockfile(t *testing.T) {
	dir := t.TempDir()
	policy, err := ForProject(dir)
	require.NoError(t, err)
	require.False(t, policy.IsIndexable("yarn.lock"))
}

func TestResetConfigCache(t *testing.T) {
	dir := t.TempDir()
	_, err := ForProject(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, ".indexer", "to-index"), "ext: .py\n")
	ResetConfigCache(dir)

	writeFile(t, filepath.Join(dir, "a.py"), "x")
	writeFile(t, filepath.Join(dir, "a.ts"), "x")
	policy, err := ForProject(dir)
	require.NoError(t, err)
	require.True(t, policy.IsIndexable("a.py"))
	require.False(t, policy.IsIndexable("a.ts"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "x")
	writeFile(t, filepath.Join(dir, "node_modules", "x.js"), "x")

	files, err := Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Contains(t, files, "src/a.ts")
	require.NotContains(t, files, "node_modules/x.js")
}
