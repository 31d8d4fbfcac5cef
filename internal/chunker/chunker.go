// Package chunker implements indexFile (spec.md §4.6): hash-gated
// re-indexing, symbol extraction, line-bounded chunking with adaptive
// splitting on oversized-embedding-request rejection, and the vector-store
// point upsert that follows.
package chunker

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentindex/codeindexd/internal/config"
	"github.com/agentindex/codeindexd/internal/embeddings"
	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/symbols"
	"github.com/agentindex/codeindexd/internal/vectorstore"
)

// Result reports what happened to one file.
type Result struct {
	Indexed bool
	Reason  string // "too_large", "unchanged", "" on success
	Chunks  int
}

// Deps bundles the external services indexFile drives.
type Deps struct {
	Store     *vectorstore.Store
	Embedder  *embeddings.Client
}

// IndexFile runs the full per-file indexing sequence for relPath within
// projectRoot, writing its points into collectionName.
func IndexFile(ctx context.Context, deps Deps, projectRoot, relPath, collectionName string, settings config.Settings) (Result, error) {
	absPath := filepath.Join(projectRoot, relPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", relPath, err)
	}
	if info.Size() > settings.MaxFileBytes {
		return Result{Reason: "too_large"}, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", relPath, err)
	}
	fileHash := sha1Hex(content)

	existingHash, hadHash, err := deps.Store.GetExistingFileHash(ctx, collectionName, relPath)
	if err != nil {
		return Result{}, fmt.Errorf("check existing hash for %s: %w", relPath, err)
	}
	if hadHash && existingHash == fileHash {
		return Result{Reason: "unchanged"}, nil
	}
	if hadHash {
		if err := deps.Store.DeletePointsByPath(ctx, collectionName, relPath); err != nil {
			return Result{}, fmt.Errorf("delete stale points for %s: %w", relPath, err)
		}
	}

	language, _ := lang.LanguageForExtension(filepath.Ext(relPath))
	extraction, err := symbols.Extract(language, content)
	if err != nil {
		extraction = symbols.Result{}
	}

	queue := Split(string(content), settings.MaxChunkLines, settings.OverlapLines)

	var points []vectorstore.Point
	for len(queue) > 0 {
		chunk := queue[0]
		queue = queue[1:]

		vector, err := deps.Embedder.Embed(ctx, chunk.Text)
		if err != nil {
			if _, tooLarge := err.(*embeddings.TooLargeError); tooLarge {
				first, second, ok := AdaptiveSplit(chunk, settings.OverlapLines)
				if ok {
					queue = append([]Chunk{first, second}, queue...)
					continue
				}
				continue // dropped: at or below the 15-line floor
			}
			return Result{}, fmt.Errorf("embed chunk %s:%d-%d: %w", relPath, chunk.StartLine, chunk.EndLine, err)
		}

		points = append(points, buildPoint(relPath, string(language), fileHash, chunk, vector, extraction))
	}

	if err := deps.Store.UpsertPoints(ctx, collectionName, points); err != nil {
		return Result{}, fmt.Errorf("upsert points for %s: %w", relPath, err)
	}

	return Result{Indexed: true, Chunks: len(points)}, nil
}

func sha1Hex(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

func buildPoint(path, language, fileHash string, chunk Chunk, vector []float32, extraction symbols.Result) vectorstore.Point {
	var symbolEntries []map[string]any
	var symbolNames []string
	symbolKindSet := map[string]bool{}
	var symbolKinds []string
	var unityTags []string
	unityTagSet := map[string]bool{}

	for _, sym := range extraction.Symbols {
		if sym.StartLine > chunk.EndLine || sym.EndLine < chunk.StartLine {
			continue
		}
		symbolEntries = append(symbolEntries, map[string]any{
			"name": sym.Name,
			"kind": sym.Kind,
			"line": sym.StartLine,
		})
		symbolNames = append(symbolNames, sym.Name)
		if !symbolKindSet[sym.Kind] {
			symbolKindSet[sym.Kind] = true
			symbolKinds = append(symbolKinds, sym.Kind)
		}
		for _, tag := range sym.Tags {
			if !unityTagSet[tag] {
				unityTagSet[tag] = true
				unityTags = append(unityTags, tag)
			}
		}
		if sym.Kind == symbols.KindUnityLifecycle && !unityTagSet[symbols.KindUnityLifecycle] {
			unityTagSet[symbols.KindUnityLifecycle] = true
			unityTags = append(unityTags, symbols.KindUnityLifecycle)
		}
	}

	var symbolReferences []string
	seenRefs := map[string]bool{}
	for _, ref := range extraction.References {
		if ref.Line > chunk.EndLine || ref.Line < chunk.StartLine {
			continue
		}
		if !seenRefs[ref.Name] {
			seenRefs[ref.Name] = true
			symbolReferences = append(symbolReferences, ref.Name)
		}
	}

	return vectorstore.Point{
		ID:     PointID(path, chunk.StartLine, chunk.EndLine),
		Vector: vector,
		Payload: map[string]any{
			"path":               path,
			"lang":               language,
			"start_line":         chunk.StartLine,
			"end_line":           chunk.EndLine,
			"text":               chunk.Text,
			"file_hash":          fileHash,
			"symbols":            symbolEntries,
			"symbol_names":       symbolNames,
			"symbol_kinds":       symbolKinds,
			"symbol_references":  symbolReferences,
			"unity_tags":         unityTags,
		},
	}
}
