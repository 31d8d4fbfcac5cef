// Package syncengine implements syncProjectWithDiff (spec.md §4.9): the
// per-project reconciliation pass that turns a snapshot diff into
// vector-store and dependency-graph mutations. Concurrency style (errgroup
// with a capped limit, warn-and-continue per item) is grounded on the
// teacher's internal/pipeline.go passDefinitions/passCalls stages.
package syncengine

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/agentindex/codeindexd/internal/chunker"
	"github.com/agentindex/codeindexd/internal/config"
	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/depgraph"
	"github.com/agentindex/codeindexd/internal/embeddings"
	"github.com/agentindex/codeindexd/internal/imports"
	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/snapshot"
	"github.com/agentindex/codeindexd/internal/vectorstore"
)

// maxConcurrentEmbeds bounds how many files are indexed (and therefore
// embedded) concurrently within one sync pass.
const maxConcurrentEmbeds = 8

// Deps bundles the services a sync pass drives.
type Deps struct {
	Config   *config.Config
	DB       *dbstore.DB
	Store    *vectorstore.Store
	Embedder *embeddings.Client
}

// Engine runs syncProjectWithDiff for any number of registered projects,
// serializing concurrent triggers for the same project per spec.md §5's
// "at most one sync active" guarantee.
type Engine struct {
	deps   Deps
	mu     sync.Mutex
	states map[string]*projectState
}

type projectState struct {
	mu           sync.Mutex
	dirty        bool
	syncing      bool
	lastSyncTime time.Time
}

// New returns an Engine driving deps.
func New(deps Deps) *Engine {
	return &Engine{deps: deps, states: map[string]*projectState{}}
}

func (e *Engine) state(projectPath string) *projectState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[projectPath]
	if !ok {
		st = &projectState{}
		e.states[projectPath] = st
	}
	return st
}

// MarkDirty flags projectPath for resync on its next sync call, without
// running one immediately. Used by the watcher on every filesystem event.
func (e *Engine) MarkDirty(projectPath string) {
	st := e.state(projectPath)
	st.mu.Lock()
	st.dirty = true
	st.mu.Unlock()
}

// LastSyncTime returns the last successful sync time for projectPath, or
// the zero time if it has never synced.
func (e *Engine) LastSyncTime(projectPath string) time.Time {
	st := e.state(projectPath)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastSyncTime
}

// SyncProjectWithDiff is step 1-6 of spec.md §4.9. A sync already in flight
// for projectPath just flips the dirty bit and returns; its completion
// rechecks the bit and reschedules itself.
func (e *Engine) SyncProjectWithDiff(ctx context.Context, projectPath string, forceFullSync bool) error {
	st := e.state(projectPath)

	st.mu.Lock()
	if st.syncing {
		st.dirty = true
		st.mu.Unlock()
		return nil
	}
	if !forceFullSync && !st.dirty {
		st.mu.Unlock()
		return nil
	}
	st.syncing = true
	st.dirty = false
	st.mu.Unlock()

	err := e.runSync(ctx, projectPath, forceFullSync)

	st.mu.Lock()
	st.syncing = false
	if err == nil {
		st.lastSyncTime = time.Now()
	} else {
		// Not marked clean on a top-level failure so the next event retries.
		st.dirty = true
	}
	rerun := err == nil && st.dirty
	st.mu.Unlock()

	if rerun {
		return e.SyncProjectWithDiff(ctx, projectPath, false)
	}
	return err
}

func (e *Engine) runSync(ctx context.Context, projectPath string, forceFullSync bool) error {
	entry, ok := e.deps.Config.GetProjectConfig(projectPath)
	if !ok {
		return nil
	}
	collectionName := entry.CollectionName
	settings := entry.Settings

	if err := e.deps.Store.EnsureCollection(ctx, collectionName, settings.VectorSize, false); err != nil {
		return err
	}

	plan, err := snapshot.GetFilesToIndex(ctx, e.deps.DB, projectPath, collectionName)
	if err != nil {
		return err
	}

	for _, relPath := range plan.FilesToRemove {
		if err := e.deps.Store.DeletePointsByPath(ctx, collectionName, relPath); err != nil {
			slog.Warn("syncengine.remove.vectorstore_err", "path", relPath, "err", err)
		}
		if err := depgraph.DeleteFileFromGraph(e.deps.DB, collectionName, relPath); err != nil {
			slog.Warn("syncengine.remove.depgraph_err", "path", relPath, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxConcurrentEmbeds)
	for _, relPath := range plan.FilesToIndex {
		relPath := relPath
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)
			e.indexOneFile(gctx, collectionName, projectPath, relPath, settings)
			return nil
		})
	}
	_ = g.Wait()

	if err := depgraph.ReconcileStaleResolvedEdges(e.deps.DB, collectionName); err != nil {
		slog.Warn("syncengine.reconcile_err", "err", err)
	}
	return nil
}

func (e *Engine) indexOneFile(ctx context.Context, collectionName, projectRoot, relPath string, settings config.Settings) {
	chunkerDeps := chunker.Deps{Store: e.deps.Store, Embedder: e.deps.Embedder}
	result, err := chunker.IndexFile(ctx, chunkerDeps, projectRoot, relPath, collectionName, settings)
	if err != nil {
		slog.Warn("syncengine.index_file_err", "path", relPath, "err", err)
		return
	}
	if !result.Indexed {
		return
	}

	if err := e.updateDependencyGraph(projectRoot, collectionName, relPath); err != nil {
		slog.Warn("syncengine.depgraph_update_err", "path", relPath, "err", err)
	}
}

func (e *Engine) updateDependencyGraph(projectRoot, collectionName, relPath string) error {
	language, _ := lang.LanguageForExtension(filepath.Ext(relPath))
	content, err := os.ReadFile(filepath.Join(projectRoot, relPath))
	if err != nil {
		return err
	}

	stmts, err := imports.Extract(language, content)
	if err != nil {
		return err
	}

	node := depgraph.Node{
		FilePath:   relPath,
		ModulePath: relPath,
		Lang:       string(language),
		IsExternal: false,
		Hash:       sha1Hex(content),
	}
	if err := depgraph.UpsertNode(e.deps.DB.Q(), collectionName, node); err != nil {
		return err
	}

	edges := make([]depgraph.Edge, 0, len(stmts))
	for _, stmt := range stmts {
		res := imports.Resolve(language, projectRoot, relPath, stmt.Source)
		edge := depgraph.Edge{
			SourceFile:    relPath,
			TargetModule:  stmt.Source,
			LineNumber:    stmt.Line,
			ImportType:    stmt.ImportType,
			ImportedNames: stmt.Names,
			IsResolved:    res.Resolved,
		}
		if res.Resolved {
			target := res.TargetPath
			edge.TargetFile = &target
		} else if res.IsExternal {
			pkg := res.PackageName
			extNode := depgraph.Node{
				FilePath:    res.PackageName,
				ModulePath:  res.PackageName,
				Lang:        string(language),
				IsExternal:  true,
				PackageName: &pkg,
			}
			if err := depgraph.UpsertNode(e.deps.DB.Q(), collectionName, extNode); err != nil {
				slog.Warn("syncengine.external_node_err", "package", res.PackageName, "err", err)
			}
		}
		edges = append(edges, edge)
	}

	return depgraph.ReplaceOutgoingEdges(e.deps.DB, collectionName, relPath, edges)
}

func sha1Hex(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}
