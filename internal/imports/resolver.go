package imports

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agentindex/codeindexd/internal/lang"
)

// Resolution is the resolver's verdict for one import specifier.
type Resolution struct {
	Resolved    bool
	TargetPath  string // project-relative
	IsExternal  bool
	PackageName string
}

var jsExtensionOrder = []string{".ts", ".tsx", ".js", ".jsx", ".d.ts"}

type tsconfigPaths struct {
	BaseURL string
	Paths   map[string][]string
}

type packageJSONImports struct {
	Imports map[string]any
}

var (
	cacheMu       sync.Mutex
	tsconfigCache = map[string]*tsconfigPaths{}
	packageCache  = map[string]*packageJSONImports{}
)

// ResetCache drops the cached tsconfig.json/package.json parses for
// projectRoot, used when those files change during a sync.
func ResetCache(projectRoot string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	delete(tsconfigCache, projectRoot)
	delete(packageCache, projectRoot)
}

// Resolve resolves one import Statement's Source specifier relative to
// sourceFile (project-relative path of the file containing the import).
func Resolve(language lang.Language, projectRoot, sourceFile, specifier string) Resolution {
	switch language {
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return resolveJSTS(projectRoot, sourceFile, specifier)
	case lang.Python:
		return resolvePython(projectRoot, sourceFile, specifier)
	case lang.CSharp:
		return resolveCSharp(projectRoot, specifier)
	default:
		return Resolution{IsExternal: true, PackageName: specifier}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func resolveJSTS(projectRoot, sourceFile, specifier string) Resolution {
	if strings.HasPrefix(specifier, ".") {
		dir := filepath.Dir(filepath.Join(projectRoot, sourceFile))
		if target, ok := resolveJSRelative(dir, specifier); ok {
			rel, _ := filepath.Rel(projectRoot, target)
			return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
		}
		return Resolution{IsExternal: false}
	}

	if strings.HasPrefix(specifier, "#") {
		if target, ok := resolvePackageImports(projectRoot, specifier); ok {
			rel, _ := filepath.Rel(projectRoot, target)
			return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
		}
	}

	if target, ok := resolveTSConfigPaths(projectRoot, specifier); ok {
		rel, _ := filepath.Rel(projectRoot, target)
		return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
	}

	return Resolution{IsExternal: true, PackageName: jsPackageName(specifier)}
}

// resolveJSRelative implements §4.8's extension search order, plus the
// .js/.jsx extension-strip retry for TypeScript sources written against
// their own compiled .js import specifiers.
func resolveJSRelative(dir, specifier string) (string, bool) {
	base := filepath.Join(dir, specifier)

	if fileExists(base) {
		return base, true
	}
	for _, ext := range jsExtensionOrder {
		if fileExists(base + ext) {
			return base + ext, true
		}
	}
	for _, indexExt := range jsExtensionOrder {
		candidate := filepath.Join(base, "index"+indexExt)
		if fileExists(candidate) {
			return candidate, true
		}
	}

	if strings.HasSuffix(specifier, ".js") || strings.HasSuffix(specifier, ".jsx") {
		stripped := strings.TrimSuffix(strings.TrimSuffix(specifier, ".jsx"), ".js")
		strippedBase := filepath.Join(dir, stripped)
		for _, ext := range jsExtensionOrder {
			if fileExists(strippedBase + ext) {
				return strippedBase + ext, true
			}
		}
	}
	return "", false
}

func jsPackageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func loadTSConfig(projectRoot string) *tsconfigPaths {
	cacheMu.Lock()
	if cached, ok := tsconfigCache[projectRoot]; ok {
		cacheMu.Unlock()
		return cached
	}
	cacheMu.Unlock()

	parsed := &tsconfigPaths{Paths: map[string][]string{}}
	data, err := os.ReadFile(filepath.Join(projectRoot, "tsconfig.json"))
	if err == nil {
		var raw struct {
			CompilerOptions struct {
				BaseURL string              `json:"baseUrl"`
				Paths   map[string][]string `json:"paths"`
			} `json:"compilerOptions"`
		}
		if json.Unmarshal(data, &raw) == nil {
			parsed.BaseURL = raw.CompilerOptions.BaseURL
			parsed.Paths = raw.CompilerOptions.Paths
		}
	}

	cacheMu.Lock()
	tsconfigCache[projectRoot] = parsed
	cacheMu.Unlock()
	return parsed
}

// resolveTSConfigPaths finds the longest concrete compilerOptions.paths
// match for specifier, substituting the "*" capture group.
func resolveTSConfigPaths(projectRoot, specifier string) (string, bool) {
	cfg := loadTSConfig(projectRoot)
	if len(cfg.Paths) == 0 {
		return "", false
	}
	baseDir := projectRoot
	if cfg.BaseURL != "" {
		baseDir = filepath.Join(projectRoot, cfg.BaseURL)
	}

	var bestTargets []string
	var bestCapture string
	bestLen := -1

	for pattern, targets := range cfg.Paths {
		prefix, suffix, hasStar := strings.Cut(pattern, "*")
		if hasStar {
			if strings.HasPrefix(specifier, prefix) && strings.HasSuffix(specifier, suffix) {
				capture := strings.TrimSuffix(strings.TrimPrefix(specifier, prefix), suffix)
				if len(prefix) > bestLen {
					bestLen = len(prefix)
					bestTargets = targets
					bestCapture = capture
				}
			}
		} else if pattern == specifier {
			if len(pattern) > bestLen {
				bestLen = len(pattern)
				bestTargets = targets
				bestCapture = ""
			}
		}
	}
	if bestTargets == nil {
		return "", false
	}
	for _, target := range bestTargets {
		resolvedTarget := strings.Replace(target, "*", bestCapture, 1)
		candidate := filepath.Join(baseDir, resolvedTarget)
		if found, ok := resolveJSRelative(filepath.Dir(candidate), filepath.Base(candidate)); ok {
			return found, true
		}
	}
	return "", false
}

func loadPackageImports(projectRoot string) *packageJSONImports {
	cacheMu.Lock()
	if cached, ok := packageCache[projectRoot]; ok {
		cacheMu.Unlock()
		return cached
	}
	cacheMu.Unlock()

	parsed := &packageJSONImports{Imports: map[string]any{}}
	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err == nil {
		var raw struct {
			Imports map[string]any `json:"imports"`
		}
		if json.Unmarshal(data, &raw) == nil {
			parsed.Imports = raw.Imports
		}
	}

	cacheMu.Lock()
	packageCache[projectRoot] = parsed
	cacheMu.Unlock()
	return parsed
}

func resolvePackageImports(projectRoot, specifier string) (string, bool) {
	pkg := loadPackageImports(projectRoot)
	raw, ok := pkg.Imports[specifier]
	if !ok {
		return "", false
	}
	target, ok := flattenImportsTarget(raw)
	if !ok {
		return "", false
	}
	target = strings.TrimPrefix(target, "./")
	return resolveJSRelative(projectRoot, target)
}

func flattenImportsTarget(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case map[string]any:
		for _, key := range []string{"default", "import", "require", "node"} {
			if nested, ok := v[key]; ok {
				return flattenImportsTarget(nested)
			}
		}
	}
	return "", false
}

// resolvePython implements the dot-prefixed relative walk-up and
// non-relative from-project-root search from §4.8.
func resolvePython(projectRoot, sourceFile, specifier string) Resolution {
	if strings.HasPrefix(specifier, ".") {
		dir := filepath.Dir(filepath.Join(projectRoot, sourceFile))
		level := 0
		for level < len(specifier) && specifier[level] == '.' {
			level++
		}
		rest := specifier[level:]
		for i := 1; i < level; i++ {
			dir = filepath.Dir(dir)
		}
		if target, ok := pythonCandidate(dir, rest); ok {
			rel, _ := filepath.Rel(projectRoot, target)
			return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
		}
		return Resolution{IsExternal: false}
	}

	if target, ok := pythonCandidate(projectRoot, specifier); ok {
		rel, _ := filepath.Rel(projectRoot, target)
		return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
	}

	return Resolution{IsExternal: true, PackageName: lastDottedSegmentFirst(specifier)}
}

func lastDottedSegmentFirst(specifier string) string {
	parts := strings.Split(specifier, ".")
	return parts[0]
}

func pythonCandidate(baseDir, dottedName string) (string, bool) {
	if dottedName == "" {
		return "", false
	}
	segments := strings.Split(dottedName, ".")
	path := filepath.Join(append([]string{baseDir}, segments...)...)
	if fileExists(path + ".py") {
		return path + ".py", true
	}
	if fileExists(filepath.Join(path, "__init__.py")) {
		return filepath.Join(path, "__init__.py"), true
	}
	return "", false
}

// resolveCSharp converts a namespace to a path and tries "<ns>.cs" relative
// to the project root; otherwise external.
func resolveCSharp(projectRoot, namespace string) Resolution {
	segments := strings.Split(namespace, ".")
	path := filepath.Join(append([]string{projectRoot}, segments...)...) + ".cs"
	if fileExists(path) {
		rel, _ := filepath.Rel(projectRoot, path)
		return Resolution{Resolved: true, TargetPath: filepath.ToSlash(rel)}
	}
	return Resolution{IsExternal: true, PackageName: namespace}
}
