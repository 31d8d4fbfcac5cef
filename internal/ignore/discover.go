package ignore

import (
	"context"
	"os"
	"path/filepath"
)

// Discover walks projectRoot and returns the relative paths of every
// indexable file, applying SkipDir to directories and IsIndexable to files.
// Mirrors the teacher's discover.Discover walk shape (context-cancellation
// checks inside the callback, filepath.SkipDir on heavy directories).
func Discover(ctx context.Context, projectRoot string) ([]string, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}
	policy, err := ForProject(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return filepath.SkipDir
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}
		if info.IsDir() {
			if policy.SkipDir(info.Name(), rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if policy.IsIndexable(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}
