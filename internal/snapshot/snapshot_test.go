package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/dbstore"
)

func TestSnapshotRoundTrip(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	snap := Snapshot{"a.ts": Entry{MtimeMs: 1, Size: 2, Hash: "h1"}}
	require.NoError(t, SaveSnapshot(db, "idx_1", snap, 1, time.Now()))

	loaded, ok, err := LoadSnapshot(db, "idx_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snap, loaded)
}

func TestLoadSnapshotMissing(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := LoadSnapshot(db, "idx_missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompareSnapshotsDisjointUnion(t *testing.T) {
	old := Snapshot{"a": {Hash: "1"}, "b": {Hash: "2"}, "c": {Hash: "3"}}
	new := Snapshot{"a": {Hash: "1"}, "b": {Hash: "2-changed"}, "d": {Hash: "4"}}

	diff := CompareSnapshots(old, new)
	require.ElementsMatch(t, []string{"d"}, diff.Added)
	require.ElementsMatch(t, []string{"b"}, diff.Modified)
	require.ElementsMatch(t, []string{"a"}, diff.Unchanged)
	require.ElementsMatch(t, []string{"c"}, diff.Removed)

	union := map[string]bool{}
	for k := range old {
		union[k] = true
	}
	for k := range new {
		union[k] = true
	}
	all := append(append(append(append([]string{}, diff.Added...), diff.Modified...), diff.Unchanged...), diff.Removed...)
	require.Len(t, all, len(union))
}

func TestGetFilesToIndexNewProject(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const A = 1"), 0o644))

	result, err := GetFilesToIndex(context.Background(), db, dir, "idx_x")
	require.NoError(t, err)
	require.True(t, result.IsNew)
	require.Contains(t, result.FilesToIndex, "a.ts")
}

func TestGetFilesToIndexIdempotent(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const A = 1"), 0o644))

	_, err = GetFilesToIndex(context.Background(), db, dir, "idx_x")
	require.NoError(t, err)

	result, err := GetFilesToIndex(context.Background(), db, dir, "idx_x")
	require.NoError(t, err)
	require.False(t, result.IsNew)
	require.Empty(t, result.FilesToIndex)
	require.Empty(t, result.FilesToRemove)
	require.Equal(t, 1, result.Diff.Totals()["unchanged"])
}
