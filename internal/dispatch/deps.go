// Package dispatch implements the MCP tool handlers of spec.md §4.11:
// search_codebase, search_symbols, get_file_outline, get_project_structure,
// find_usages and get_dependency_graph. Every call carries a collectionId;
// the Server resolves it to a project and builds a per-call dependency
// bundle from that project's settings (spec.md's design note on "dynamic
// tool dispatch" calls for a tagged enumeration plus an explicit deps
// struct of interfaces rather than a map of closures over ambient state),
// following the registration/helper shape of the teacher's
// internal/tools/tools.go (addTool/jsonResult/errResult/parseArgs).
package dispatch

import (
	"context"

	"github.com/agentindex/codeindexd/internal/config"
	"github.com/agentindex/codeindexd/internal/grepper"
	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/snapshot"
	"github.com/agentindex/codeindexd/internal/symbols"
	"github.com/agentindex/codeindexd/internal/vectorstore"
)

// Embedder turns a query string into a vector. Satisfied by
// *internal/embeddings.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher is the subset of *internal/vectorstore.Store the
// dispatcher needs for read-only tool handlers. Each method is
// independently fakeable in tests per spec.md §9's design note.
type VectorSearcher interface {
	Search(ctx context.Context, name string, vector []float32, topK int, pathPrefix string, scoreThreshold float64) ([]vectorstore.Hit, error)
	Scroll(ctx context.Context, name string, filter map[string]any, limit int) ([]vectorstore.Hit, error)
}

// Grepper runs a whole-word textual search (internal/grepper.Search).
type Grepper interface {
	Search(ctx context.Context, workspace, pattern string) ([]grepper.Hit, error)
}

// SymbolExtractor extracts symbols/references from file content
// (internal/symbols.Extract) and tells code from comments/strings
// (internal/symbols.IsCodeAtPosition).
type SymbolExtractor interface {
	Extract(language lang.Language, source []byte) (symbols.Result, error)
	IsCodeAtPosition(content []byte, language lang.Language, line, col int) bool
}

// FileReader reads a project-relative file's content, rooted at the
// project's workspace directory.
type FileReader interface {
	ReadFile(projectRoot, relPath string) ([]byte, error)
}

// Snapshotter lists every currently-indexable file in a project
// (internal/snapshot.CreateSnapshot), used by get_project_structure.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, projectRoot string) (snapshot.Snapshot, error)
}

// ProjectResolver maps a collectionId to its project path and merged
// settings (internal/config.Config.ProjectForCollection).
type ProjectResolver interface {
	ProjectForCollection(collectionID string) (path string, entry config.ProjectEntry, ok bool)
}
