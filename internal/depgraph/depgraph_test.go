package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentindex/codeindexd/internal/dbstore"
)

func strp(s string) *string { return &s }

func TestUpsertAndBFS(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, UpsertNodes(db, "c1", []Node{
		{FilePath: "a.ts"}, {FilePath: "b.ts"}, {FilePath: "c.ts"}, {FilePath: "d.ts"},
	}))
	require.NoError(t, ReplaceOutgoingEdges(db, "c1", "a.ts", []Edge{
		{SourceFile: "a.ts", TargetModule: "./b", TargetFile: strp("b.ts"), ImportType: "named", IsResolved: true},
	}))
	require.NoError(t, ReplaceOutgoingEdges(db, "c1", "b.ts", []Edge{
		{SourceFile: "b.ts", TargetModule: "./c", TargetFile: strp("c.ts"), ImportType: "named", IsResolved: true},
	}))
	require.NoError(t, ReplaceOutgoingEdges(db, "c1", "c.ts", []Edge{
		{SourceFile: "c.ts", TargetModule: "./d", TargetFile: strp("d.ts"), ImportType: "named", IsResolved: true},
	}))

	nodes, edges, err := BFS(db.Q(), "c1", "a.ts", 2, false)
	require.NoError(t, err)

	var paths []string
	for _, n := range nodes {
		paths = append(paths, n.FilePath)
	}
	require.ElementsMatch(t, []string{"a.ts", "b.ts", "c.ts"}, paths)
	require.Len(t, edges, 2)
}

func TestDeleteFileFromGraphKeepsIncoming(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, UpsertNodes(db, "c1", []Node{{FilePath: "a.ts"}, {FilePath: "b.ts"}}))
	require.NoError(t, ReplaceOutgoingEdges(db, "c1", "a.ts", []Edge{
		{SourceFile: "a.ts", TargetModule: "./b", TargetFile: strp("b.ts"), ImportType: "named", IsResolved: true},
	}))

	require.NoError(t, DeleteFileFromGraph(db, "c1", "a.ts"))

	incoming, err := GetEdgesByTarget(db.Q(), "c1", "b.ts")
	require.NoError(t, err)
	require.Len(t, incoming, 1, "incoming edges from other files are retained")

	outgoing, err := GetEdgesBySource(db.Q(), "c1", "a.ts")
	require.NoError(t, err)
	require.Empty(t, outgoing)
}

func TestReconcileStaleResolvedEdges(t *testing.T) {
	db, err := dbstore.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, UpsertNodes(db, "c1", []Node{{FilePath: "a.ts"}}))
	require.NoError(t, ReplaceOutgoingEdges(db, "c1", "a.ts", []Edge{
		{SourceFile: "a.ts", TargetModule: "./gone", TargetFile: strp("gone.ts"), ImportType: "named", IsResolved: true},
	}))

	require.NoError(t, ReconcileStaleResolvedEdges(db, "c1"))

	edges, err := GetEdgesBySource(db.Q(), "c1", "a.ts")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.False(t, edges[0].IsResolved)
}
