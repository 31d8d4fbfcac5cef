// Package ignore implements the file-selection policy: a project-local
// whitelist file, default excludes, and .gitignore semantics, combined into
// a single IsIndexable predicate per project root.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
)

// WhitelistFile is the project-local file naming dirs/extensions to index.
const WhitelistFile = ".indexer/to-index"

// GitignoreFile is the standard per-project ignore file.
const GitignoreFile = ".gitignore"

// defaultExcludeDirs mirrors the teacher's discover.IGNORE_PATTERNS, extended
// per spec with a few more VCS/build/cache directory names.
var defaultExcludeDirs = map[string]bool{
	".cache": true, ".claude": true, ".eclipse": true, ".eggs": true,
	".env": true, ".git": true, ".gradle": true, ".hg": true,
	".idea": true, ".maven": true, ".mypy_cache": true, ".nox": true,
	".npm": true, ".nyc_output": true, ".pnpm-store": true,
	".pytest_cache": true, ".qdrant_code_embeddings": true,
	".ruff_cache": true, ".svn": true, ".tmp": true, ".tox": true,
	".venv": true, ".vs": true, ".vscode": true, ".yarn": true,
	"__pycache__": true, "bin": true, "bower_components": true,
	"build": true, "coverage": true, "dist": true, "env": true,
	"htmlcov": true, "node_modules": true, "obj": true, "out": true,
	"Pods": true, "site-packages": true, "target": true, "temp": true,
	"tmp": true, "vendor": true, "venv": true,
	".indexer": true, // our own metadata directory
}

// defaultExcludeSuffixes mirrors the teacher's IGNORE_SUFFIXES, extended per
// spec with media/binary/docs-only-styling suffixes.
var defaultExcludeSuffixes = []string{
	".tmp", "~", ".pyc", ".pyo", ".o", ".a", ".so", ".dll", ".class",
	".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg", ".webp", ".bmp",
	".mp3", ".mp4", ".mov", ".avi", ".woff", ".woff2", ".ttf", ".eot",
	".pdf", ".zip", ".tar", ".gz", ".7z", ".min.css", ".min.js",
}

// hardExcludeExts is a fixed exclude set applied regardless of whitelist.
var hardExcludeExts = map[string]bool{
	".lock": true,
}

// Policy is the resolved file-selection policy for one project root.
type Policy struct {
	root           string
	hasWhitelist   bool
	dirGlobs       []string
	exts           map[string]bool
	gitMatcher     gitignore.IgnoreMatcher
	hasGitignore   bool
}

var (
	mu    sync.Mutex
	cache = map[string]*Policy{}
)

// ForProject returns the cached Policy for projectRoot, loading it if
// necessary. Safe for concurrent use; entries are invalidated through
// ResetConfigCache.
func ForProject(projectRoot string) (*Policy, error) {
	root := filepath.Clean(projectRoot)

	mu.Lock()
	if p, ok := cache[root]; ok {
		mu.Unlock()
		return p, nil
	}
	mu.Unlock()

	p, err := load(root)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	cache[root] = p
	mu.Unlock()
	return p, nil
}

// ResetConfigCache invalidates the cached policy for projectRoot. The watch
// manager calls it when it observes a config-file change, just before it
// forces a full sync of that project.
func ResetConfigCache(projectRoot string) {
	mu.Lock()
	delete(cache, filepath.Clean(projectRoot))
	mu.Unlock()
}

func load(root string) (*Policy, error) {
	p := &Policy{root: root, exts: map[string]bool{}}

	wlPath := filepath.Join(root, WhitelistFile)
	if f, err := os.Open(wlPath); err == nil {
		defer f.Close()
		p.hasWhitelist = true
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			switch {
			case strings.HasPrefix(line, "dir:"):
				dir := strings.TrimSpace(strings.TrimPrefix(line, "dir:"))
				if dir == "" {
					continue
				}
				if !strings.ContainsAny(dir, "*?[") {
					dir = strings.TrimSuffix(dir, "/") + "/**/*"
				}
				p.dirGlobs = append(p.dirGlobs, filepath.ToSlash(dir))
			case strings.HasPrefix(line, "ext:"):
				ext := strings.TrimSpace(strings.TrimPrefix(line, "ext:"))
				if ext != "" {
					p.exts[ext] = true
				}
			}
		}
	}

	giPath := filepath.Join(root, GitignoreFile)
	if _, err := os.Stat(giPath); err == nil {
		if m, err := gitignore.NewGitIgnore(giPath); err == nil {
			p.gitMatcher = m
			p.hasGitignore = true
		}
	}

	return p, nil
}

// SkipDir reports whether a directory (named name, project-relative path
// rel) should never be descended into.
func (p *Policy) SkipDir(name, rel string) bool {
	if defaultExcludeDirs[name] {
		return true
	}
	if p.hasGitignore && p.gitMatcher.Match(filepath.ToSlash(rel), true) {
		return true
	}
	return false
}

// IsIndexable reports whether relPath (slash-separated, relative to the
// project root) should be indexed, per spec.md §4.5:
//
//	a file is indexable iff it passes whitelist dir-globs, has an allowed
//	extension (if exts is nonempty), is not ignored, and its extension is
//	not in the fixed exclude set.
func (p *Policy) IsIndexable(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	ext := strings.ToLower(filepath.Ext(relPath))

	if hardExcludeExts[ext] {
		return false
	}
	for _, suf := range defaultExcludeSuffixes {
		if strings.HasSuffix(relPath, suf) {
			return false
		}
	}

	// Empty whitelist (whitelist file present, both directive lists empty)
	// means nothing is indexable.
	if p.hasWhitelist && len(p.dirGlobs) == 0 && len(p.exts) == 0 {
		return false
	}

	if len(p.dirGlobs) > 0 {
		matched := false
		for _, g := range p.dirGlobs {
			if ok, _ := doublestar.Match(g, relPath); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(p.exts) > 0 && !p.exts[ext] {
		return false
	}

	if p.hasGitignore && p.gitMatcher.Match(relPath, false) {
		return false
	}

	return true
}
