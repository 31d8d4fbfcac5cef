package dispatch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/grepper"
	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/snapshot"
	"github.com/agentindex/codeindexd/internal/symbols"
)

// OSFileReader implements FileReader against the local filesystem.
type OSFileReader struct{}

// ReadFile reads projectRoot/relPath.
func (OSFileReader) ReadFile(projectRoot, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(projectRoot, relPath))
}

// TreeSitterSymbols adapts internal/symbols' free functions to
// SymbolExtractor.
type TreeSitterSymbols struct{}

func (TreeSitterSymbols) Extract(language lang.Language, source []byte) (symbols.Result, error) {
	return symbols.Extract(language, source)
}

func (TreeSitterSymbols) IsCodeAtPosition(content []byte, language lang.Language, line, col int) bool {
	return symbols.IsCodeAtPosition(content, language, line, col)
}

// RipgrepGrepper adapts internal/grepper.Search to Grepper.
type RipgrepGrepper struct{}

func (RipgrepGrepper) Search(ctx context.Context, workspace, pattern string) ([]grepper.Hit, error) {
	return grepper.Search(ctx, workspace, pattern)
}

// SnapshotFileLister adapts internal/snapshot.CreateSnapshot to
// Snapshotter.
type SnapshotFileLister struct{}

func (SnapshotFileLister) CreateSnapshot(ctx context.Context, projectRoot string) (snapshot.Snapshot, error) {
	return snapshot.CreateSnapshot(ctx, projectRoot)
}

// DBGraphQuerier exposes a *dbstore.DB as a dbstore.Querier for
// ProjectDeps.Graph.
func DBGraphQuerier(db *dbstore.DB) dbstore.Querier {
	return db.Q()
}
