// Package snapshot persists, per collection, a file-path to
// {mtime, size, content-hash} table and answers diff queries, per
// spec.md §4.2. Backed by internal/dbstore (modernc.org/sqlite, WAL mode).
package snapshot

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/ignore"
)

// Entry is one file's recorded state.
type Entry struct {
	MtimeMs int64
	Size    int64
	Hash    string // SHA-1 of file content, per spec.md §3
}

// Snapshot maps project-relative file path to its recorded Entry.
type Snapshot map[string]Entry

// Diff is the result of comparing two snapshots.
type Diff struct {
	Added     []string
	Modified  []string
	Unchanged []string
	Removed   []string
}

// Totals returns the per-bucket counts used by S2's idempotent-resync check.
func (d Diff) Totals() map[string]int {
	return map[string]int{
		"added":     len(d.Added),
		"modified":  len(d.Modified),
		"unchanged": len(d.Unchanged),
		"removed":   len(d.Removed),
	}
}

// CreateSnapshot enumerates indexable files under projectRoot (via
// internal/ignore) and hashes each one. Files that fail to read are skipped,
// not fatal, per spec.md §4.2 and the filesystem-error handling in §7.
func CreateSnapshot(ctx context.Context, projectRoot string) (Snapshot, error) {
	relPaths, err := ignore.Discover(ctx, projectRoot)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	snap := make(Snapshot, len(relPaths))
	for _, rel := range relPaths {
		full := filepath.Join(projectRoot, rel)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		content, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		sum := sha1.Sum(content)
		snap[rel] = Entry{
			MtimeMs: info.ModTime().UnixMilli(),
			Size:    info.Size(),
			Hash:    hex.EncodeToString(sum[:]),
		}
	}
	return snap, nil
}

// SaveSnapshot replaces all rows for collectionName within one transaction.
func SaveSnapshot(db *dbstore.DB, collectionName string, files Snapshot, version int, timestamp time.Time) error {
	return db.WithTransaction(func(tx *dbstore.DB) error {
		q := tx.Q()
		if _, err := q.Exec(`DELETE FROM snapshots WHERE collection_id = ?`, collectionName); err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
		for path, e := range files {
			if _, err := q.Exec(
				`INSERT INTO snapshots (collection_id, file_path, mtime_ms, size, hash) VALUES (?, ?, ?, ?, ?)`,
				collectionName, path, e.MtimeMs, e.Size, e.Hash,
			); err != nil {
				return fmt.Errorf("insert snapshot row %s: %w", path, err)
			}
		}
		if _, err := q.Exec(
			`INSERT INTO snapshot_metadata (collection_id, version, timestamp) VALUES (?, ?, ?)
			 ON CONFLICT(collection_id) DO UPDATE SET version = excluded.version, timestamp = excluded.timestamp`,
			collectionName, version, timestamp.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("update metadata: %w", err)
		}
		return nil
	})
}

// LoadSnapshot returns the persisted snapshot for collectionName, or
// (nil, false) if no metadata row exists yet.
func LoadSnapshot(db *dbstore.DB, collectionName string) (Snapshot, bool, error) {
	var version int
	err := db.Q().QueryRow(
		`SELECT version FROM snapshot_metadata WHERE collection_id = ?`, collectionName,
	).Scan(&version)
	if err != nil {
		return nil, false, nil
	}

	rows, err := db.Q().Query(
		`SELECT file_path, mtime_ms, size, hash FROM snapshots WHERE collection_id = ?`, collectionName,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var path, hash string
		var mtime, size int64
		if err := rows.Scan(&path, &mtime, &size, &hash); err != nil {
			return nil, false, err
		}
		snap[path] = Entry{MtimeMs: mtime, Size: size, Hash: hash}
	}
	return snap, true, rows.Err()
}

// CompareSnapshots computes the diff per spec.md testable property 3: the
// four buckets are pairwise disjoint and their union is keys(old) ∪ keys(new).
func CompareSnapshots(old, new Snapshot) Diff {
	var d Diff
	for path, newEntry := range new {
		oldEntry, existed := old[path]
		switch {
		case !existed:
			d.Added = append(d.Added, path)
		case oldEntry.Hash != newEntry.Hash:
			d.Modified = append(d.Modified, path)
		default:
			d.Unchanged = append(d.Unchanged, path)
		}
	}
	for path := range old {
		if _, stillPresent := new[path]; !stillPresent {
			d.Removed = append(d.Removed, path)
		}
	}
	return d
}

// PlanResult is what GetFilesToIndex returns to the sync engine.
type PlanResult struct {
	FilesToIndex  []string
	FilesToRemove []string
	IsNew         bool
	Diff          Diff
}

// GetFilesToIndex computes a fresh snapshot, diffs it against the persisted
// one, and always persists the new snapshot before returning — so a crash
// between diff and index leaves the snapshot store in the "new" state and a
// subsequent resync reconciles from the vector store's actual file_hash.
func GetFilesToIndex(ctx context.Context, db *dbstore.DB, projectRoot, collectionName string) (PlanResult, error) {
	newSnap, err := CreateSnapshot(ctx, projectRoot)
	if err != nil {
		return PlanResult{}, err
	}

	oldSnap, hadPrior, err := LoadSnapshot(db, collectionName)
	if err != nil {
		return PlanResult{}, err
	}

	var result PlanResult
	if !hadPrior {
		result.IsNew = true
		for path := range newSnap {
			result.FilesToIndex = append(result.FilesToIndex, path)
		}
		result.Diff = Diff{Added: result.FilesToIndex}
	} else {
		diff := CompareSnapshots(oldSnap, newSnap)
		result.Diff = diff
		result.FilesToIndex = append(append([]string{}, diff.Added...), diff.Modified...)
		result.FilesToRemove = diff.Removed
	}

	if err := SaveSnapshot(db, collectionName, newSnap, 1, time.Now()); err != nil {
		return PlanResult{}, err
	}
	return result, nil
}
