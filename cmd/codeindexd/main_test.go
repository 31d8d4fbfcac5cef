package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/dispatch"
	"github.com/agentindex/codeindexd/internal/embeddings"
	"github.com/agentindex/codeindexd/internal/syncengine"
	"github.com/agentindex/codeindexd/internal/vectorstore"
	"github.com/agentindex/codeindexd/internal/watch"
)

var _ watch.Syncer = (*syncengine.Engine)(nil)

func TestBuildProducesUsableDeps(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	store := vectorstore.New("http://localhost:6333")
	embedder := embeddings.New("http://localhost:11434", "nomic-embed-text")

	build := func(projectRoot, collectionName string, topKDefault int, scoreThreshold float64) (dispatch.ProjectDeps, error) {
		return dispatch.ProjectDeps{
			ProjectRoot:    projectRoot,
			CollectionName: collectionName,
			TopKDefault:    topKDefault,
			ScoreThreshold: scoreThreshold,
			Embedder:       embedder,
			Store:          store,
			Grep:           dispatch.RipgrepGrepper{},
			Symbols:        dispatch.TreeSitterSymbols{},
			Files:          dispatch.OSFileReader{},
			Snapshots:      dispatch.SnapshotFileLister{},
			Graph:          dispatch.DBGraphQuerier(db),
		}, nil
	}

	deps, err := build("/proj", "idx_abc", 10, 0.2)
	require.NoError(t, err)
	assert.Equal(t, "/proj", deps.ProjectRoot)
	assert.Equal(t, "idx_abc", deps.CollectionName)
	assert.NotNil(t, deps.Graph)
}

func TestEngineSatisfiesWatchSyncer(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	engine := syncengine.New(syncengine.Deps{DB: db})
	assert.NotPanics(t, func() { engine.MarkDirty("/unregistered") })
}
