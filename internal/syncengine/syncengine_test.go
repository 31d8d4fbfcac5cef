package syncengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/config"
	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/depgraph"
	"github.com/agentindex/codeindexd/internal/embeddings"
	"github.com/agentindex/codeindexd/internal/vectorstore"
)

func newTestEngine(t *testing.T, vsURL, embURL string) (*Engine, *config.Config, *dbstore.DB) {
	t.Helper()
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{Projects: map[string]config.ProjectEntry{}}

	settings := config.Defaults()
	settings.VectorStoreURL = vsURL
	settings.EmbeddingsURL = embURL

	deps := Deps{
		Config:   cfg,
		DB:       db,
		Store:    vectorstore.New(vsURL),
		Embedder: embeddings.New(embURL, "test-model"),
	}
	return New(deps), cfg, db
}

func TestSyncProjectWithDiffNewProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc Hello() {}\n"), 0o644))

	var upserted []vectorstore.Point
	vsMux := http.NewServeMux()
	vsMux.HandleFunc("/collections/proj_1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	vsMux.HandleFunc("/collections/proj_1/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"points":[]}}`))
	})
	vsMux.HandleFunc("/collections/proj_1/points", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Points []vectorstore.Point `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		upserted = body.Points
		w.Write([]byte(`{}`))
	})
	vsSrv := httptest.NewServer(vsMux)
	defer vsSrv.Close()

	embSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":[0.1,0.2]}`))
	}))
	defer embSrv.Close()

	engine, cfg, db := newTestEngine(t, vsSrv.URL, embSrv.URL)
	cfg.Projects[dir] = config.ProjectEntry{CollectionName: "proj_1"}

	err := engine.SyncProjectWithDiff(context.Background(), dir, true)
	require.NoError(t, err)
	require.Len(t, upserted, 1)
	require.False(t, engine.LastSyncTime(dir).IsZero())

	nodes, err := depgraph.GetNodesByCollection(db.Q(), "proj_1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "main.go", nodes[0].FilePath)
}

func TestSyncProjectWithDiffUnknownProjectIsNoop(t *testing.T) {
	engine, _, _ := newTestEngine(t, "http://unused", "http://unused")
	err := engine.SyncProjectWithDiff(context.Background(), "/does/not/exist", true)
	require.NoError(t, err)
}

func TestSyncProjectWithDiffSkipsWhenCleanAndNotForced(t *testing.T) {
	engine, cfg, _ := newTestEngine(t, "http://unused", "http://unused")
	cfg.Projects["/tmp/some-project"] = config.ProjectEntry{CollectionName: "proj_2"}

	err := engine.SyncProjectWithDiff(context.Background(), "/tmp/some-project", false)
	require.NoError(t, err)
	require.True(t, engine.LastSyncTime("/tmp/some-project").IsZero())
}

func TestMarkDirtyEnablesNextSync(t *testing.T) {
	dir := t.TempDir()

	vsMux := http.NewServeMux()
	vsMux.HandleFunc("/collections/proj_3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	vsMux.HandleFunc("/collections/proj_3/points/scroll", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"points":[]}}`))
	})
	vsMux.HandleFunc("/collections/proj_3/points", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	vsSrv := httptest.NewServer(vsMux)
	defer vsSrv.Close()

	engine, cfg, _ := newTestEngine(t, vsSrv.URL, "http://unused")
	cfg.Projects[dir] = config.ProjectEntry{CollectionName: "proj_3"}

	require.NoError(t, engine.SyncProjectWithDiff(context.Background(), dir, false))
	require.True(t, engine.LastSyncTime(dir).IsZero())

	engine.MarkDirty(dir)
	require.NoError(t, engine.SyncProjectWithDiff(context.Background(), dir, false))
	require.False(t, engine.LastSyncTime(dir).IsZero())
}
