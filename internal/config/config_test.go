package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectionNameDeterministic(t *testing.T) {
	a := CollectionName("/home/user/project")
	b := CollectionName("/home/user/project")
	require.Equal(t, a, b)
	require.Len(t, a, len("idx_")+16)
	require.NotEqual(t, a, CollectionName("/home/user/other"))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadPath(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	require.Empty(t, cfg.Projects)
}

func TestLoadMalformedPropagates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := LoadPath(path)
	require.Error(t, err)
}

func TestAddProjectIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg, err := LoadPath(path)
	require.NoError(t, err)

	e1, err := cfg.AddProject("/proj")
	require.NoError(t, err)
	e2, err := cfg.AddProject("/proj")
	require.NoError(t, err)
	require.Equal(t, e1.CollectionName, e2.CollectionName)

	reloaded, err := LoadPath(path)
	require.NoError(t, err)
	_, ok := reloaded.GetProjectConfig("/proj")
	require.True(t, ok)
}

func TestLegacyListMigration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"projects": ["/a", "/b"]}`), 0o644))

	cfg, err := LoadPath(path)
	require.NoError(t, err)
	require.Len(t, cfg.Projects, 2)
	entry, ok := cfg.GetProjectConfig("/a")
	require.True(t, ok)
	require.Equal(t, CollectionName("/a"), entry.CollectionName)
}

func TestRemoveProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg, err := LoadPath(path)
	require.NoError(t, err)
	_, err = cfg.AddProject("/proj")
	require.NoError(t, err)
	require.NoError(t, cfg.RemoveProject("/proj"))
	_, ok := cfg.GetProjectConfig("/proj")
	require.False(t, ok)
}

func TestGetProjectConfigMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadPath(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	cfg.Projects["/proj"] = ProjectEntry{
		CollectionName: CollectionName("/proj"),
		Settings:       Settings{TopKDefault: 25},
	}
	entry, ok := cfg.GetProjectConfig("/proj")
	require.True(t, ok)
	require.Equal(t, 25, entry.Settings.TopKDefault)
	require.Equal(t, Defaults().VectorSize, entry.Settings.VectorSize)
}

func TestResolveSettingsLayersYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".indexer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".indexer", "settings.yaml"),
		[]byte("topKDefault: 42\n"), 0o644))

	settings, err := ResolveSettings(dir, Settings{EmbedModel: "custom"})
	require.NoError(t, err)
	require.Equal(t, 42, settings.TopKDefault)
	require.Equal(t, "custom", settings.EmbedModel)
	require.Equal(t, Defaults().VectorSize, settings.VectorSize)
}
