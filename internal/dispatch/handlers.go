package dispatch

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentindex/codeindexd/internal/depgraph"
	"github.com/agentindex/codeindexd/internal/grepper"
	"github.com/agentindex/codeindexd/internal/lang"
	"github.com/agentindex/codeindexd/internal/symbols"
	"github.com/agentindex/codeindexd/internal/vectorstore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools(build BuildDeps) {
	s.registerSearchCodebase(build)
	s.registerSearchSymbols(build)
	s.registerGetFileOutline(build)
	s.registerGetProjectStructure(build)
	s.registerFindUsages(build)
	s.registerGetDependencyGraph(build)
}

const collectionIDProp = `"collectionId": {"type": "string", "description": "Owning project's collection id."}`

// --- search_codebase ---

func (s *Server) registerSearchCodebase(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "search_codebase",
		Description: "Semantic search over indexed source chunks. Embeds the query and vector-searches the project's collection.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + collectionIDProp + `,
				"query": {"type": "string", "description": "Natural-language or code search query."},
				"top_k": {"type": "integer", "description": "Max results (defaults to the project's configured topKDefault)."},
				"path_prefix": {"type": "string", "description": "Restrict results to files under this path prefix."}
			},
			"required": ["collectionId", "query"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleSearchCodebase(ctx, deps, args), nil
	})
}

type searchResultRow struct {
	Rank        int      `json:"rank"`
	Path        string   `json:"path"`
	StartLine   int      `json:"start_line"`
	EndLine     int      `json:"end_line"`
	Snippet     string   `json:"snippet"`
	Score       *float64 `json:"score,omitempty"`
	SymbolNames []string `json:"symbol_names"`
	SymbolKinds []string `json:"symbol_kinds"`
	UnityTags   []string `json:"unity_tags"`
}

func hitToRow(rank int, h vectorstore.Hit, withScore bool) searchResultRow {
	row := searchResultRow{
		Rank:        rank,
		Path:        payloadString(h.Payload, "path"),
		StartLine:   payloadInt(h.Payload, "start_line"),
		EndLine:     payloadInt(h.Payload, "end_line"),
		Snippet:     payloadString(h.Payload, "text"),
		SymbolNames: payloadStrings(h.Payload, "symbol_names"),
		SymbolKinds: payloadStrings(h.Payload, "symbol_kinds"),
		UnityTags:   payloadStrings(h.Payload, "unity_tags"),
	}
	if withScore {
		score := h.Score
		row.Score = &score
	}
	return row
}

func payloadString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func payloadStrings(payload map[string]any, key string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func handleSearchCodebase(ctx context.Context, deps ProjectDeps, args map[string]any) *mcp.CallToolResult {
	query := getStringArg(args, "query")
	if query == "" {
		return errResult("query is required")
	}
	topK := getIntArg(args, "top_k", deps.TopKDefault)
	pathPrefix := getStringArg(args, "path_prefix")

	vector, err := deps.Embedder.Embed(ctx, query)
	if err != nil {
		return errResult("embed query: " + err.Error())
	}
	hits, err := deps.Store.Search(ctx, deps.CollectionName, vector, topK, pathPrefix, deps.ScoreThreshold)
	if err != nil {
		return errResult("vector search: " + err.Error())
	}

	rows := make([]searchResultRow, 0, len(hits))
	for i, h := range hits {
		rows = append(rows, hitToRow(i+1, h, true))
	}
	return jsonResult(rows)
}

// --- search_symbols ---

func (s *Server) registerSearchSymbols(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "search_symbols",
		Description: "Find chunks whose symbol names or references match a keyword. Tries an exact keyword match first and falls back to a tokenized text match only when that finds nothing.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + collectionIDProp + `,
				"name": {"type": "string", "description": "Symbol name keyword to match."},
				"kind": {"type": "string", "description": "Restrict to one symbol kind, or \"any\" (default)."},
				"top_k": {"type": "integer", "description": "Max results (default 10)."}
			},
			"required": ["collectionId", "name"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleSearchSymbols(ctx, deps, args), nil
	})
}

// handleSearchSymbols resolves Open Question 1 (spec.md §9): rather than
// rely on an unspecified text-matcher tokenization, match `name` as an
// exact keyword against symbol_names/symbol_references first, falling back
// to a tokenized text match (split on non-alnum) only when the keyword
// pass finds nothing, so "takeDamage" cannot accidentally match "take
// damage" without an explicit fallback step.
func handleSearchSymbols(ctx context.Context, deps ProjectDeps, args map[string]any) *mcp.CallToolResult {
	name := getStringArg(args, "name")
	if name == "" {
		return errResult("name is required")
	}
	kind := getStringArg(args, "kind")
	if kind == "" {
		kind = "any"
	}
	topK := getIntArg(args, "top_k", 10)

	filter := symbolMatchFilter(name, kind, "keyword")
	hits, err := deps.Store.Scroll(ctx, deps.CollectionName, filter, topK)
	if err != nil {
		return errResult("scroll: " + err.Error())
	}
	if len(hits) == 0 {
		filter = symbolMatchFilter(name, kind, "text")
		hits, err = deps.Store.Scroll(ctx, deps.CollectionName, filter, topK)
		if err != nil {
			return errResult("scroll: " + err.Error())
		}
	}

	rows := make([]searchResultRow, 0, len(hits))
	for i, h := range hits {
		rows = append(rows, hitToRow(i+1, h, false))
	}
	return jsonResult(rows)
}

func symbolMatchFilter(name, kind, matchMode string) map[string]any {
	should := []map[string]any{
		{"key": "symbol_names", "match": map[string]any{matchMode: name}},
		{"key": "symbol_references", "match": map[string]any{matchMode: name}},
	}
	must := []map[string]any{{"should": should}}
	if kind != "any" {
		must = append(must, map[string]any{"key": "symbol_kinds", "match": map[string]any{"any": []string{kind}}})
	}
	return map[string]any{"must": must}
}

// --- get_file_outline ---

func (s *Server) registerGetFileOutline(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "get_file_outline",
		Description: "List the symbols declared in one file (functions, classes, methods, etc.), dropping bare identifier references.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + collectionIDProp + `,
				"path": {"type": "string", "description": "Project-relative file path."}
			},
			"required": ["collectionId", "path"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleGetFileOutline(deps, args), nil
	})
}

type outlineEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

func handleGetFileOutline(deps ProjectDeps, args map[string]any) *mcp.CallToolResult {
	path := getStringArg(args, "path")
	if path == "" {
		return errResult("path is required")
	}
	content, err := deps.Files.ReadFile(deps.ProjectRoot, path)
	if err != nil {
		return errResult("read file: " + err.Error())
	}
	language, _ := lang.LanguageForExtension(filepath.Ext(path))
	result, err := deps.Symbols.Extract(language, content)
	if err != nil {
		return errResult("extract symbols: " + err.Error())
	}

	entries := make([]outlineEntry, 0, len(result.Symbols))
	for _, sym := range result.Symbols {
		if sym.Kind == symbols.KindReference {
			continue
		}
		entries = append(entries, outlineEntry{Name: sym.Name, Kind: sym.Kind, Line: sym.StartLine})
	}
	return jsonResult(entries)
}

// --- get_project_structure ---

func (s *Server) registerGetProjectStructure(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "get_project_structure",
		Description: "Return an ASCII directory tree of every currently-indexable file in the project.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {` + collectionIDProp + `},
			"required": ["collectionId"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleGetProjectStructure(ctx, deps), nil
	})
}

func handleGetProjectStructure(ctx context.Context, deps ProjectDeps) *mcp.CallToolResult {
	snap, err := deps.Snapshots.CreateSnapshot(ctx, deps.ProjectRoot)
	if err != nil {
		return errResult("enumerate files: " + err.Error())
	}
	if len(snap) == 0 {
		return textResult("(empty project)")
	}
	paths := make([]string, 0, len(snap))
	for p := range snap {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return textResult(buildTree(paths))
}

// --- find_usages ---

func (s *Server) registerFindUsages(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "find_usages",
		Description: "Grep for a symbol's whole-word occurrences, filtered to real code (drops matches inside comments/strings via the file's AST).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + collectionIDProp + `,
				"symbol": {"type": "string", "description": "Symbol name, optionally dotted as Context.symbol."},
				"context": {"type": "string", "description": "Restrict to files defining/referencing this enclosing name."}
			},
			"required": ["collectionId", "symbol"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleFindUsages(ctx, deps, args), nil
	})
}

type usageRow struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

func handleFindUsages(ctx context.Context, deps ProjectDeps, args map[string]any) *mcp.CallToolResult {
	symbol := getStringArg(args, "symbol")
	if symbol == "" {
		return errResult("symbol is required")
	}
	searchContext := getStringArg(args, "context")
	searchName := symbol
	if searchContext == "" {
		if idx := strings.LastIndex(symbol, "."); idx >= 0 {
			searchContext = symbol[:idx]
			searchName = symbol[idx+1:]
		}
	}

	hits, err := deps.Grep.Search(ctx, deps.ProjectRoot, searchName)
	if err != nil {
		return errResult("grep: " + err.Error())
	}

	filtered := filterCodeHits(deps, hits)

	if searchContext != "" {
		restrictedFiles, err := contextFiles(ctx, deps, searchContext)
		if err != nil {
			return errResult("scroll context: " + err.Error())
		}
		if len(restrictedFiles) > 0 {
			restricted := make([]usageRow, 0, len(filtered))
			for _, row := range filtered {
				if restrictedFiles[row.Path] {
					restricted = append(restricted, row)
				}
			}
			if len(restricted) > 0 {
				filtered = restricted
			}
			// else: restricting would empty the result, fall back to the
			// unrestricted filtered list per spec.md §4.11.
		}
	}

	return jsonResult(filtered)
}

func filterCodeHits(deps ProjectDeps, hits []grepper.Hit) []usageRow {
	rows := make([]usageRow, 0, len(hits))
	for _, h := range hits {
		relPath, ok := relToProjectRoot(deps.ProjectRoot, h.Path)
		if !ok {
			continue
		}
		language, ok := lang.LanguageForExtension(filepath.Ext(relPath))
		if !ok {
			rows = append(rows, usageRow{Path: relPath, Line: h.Line, Column: h.Column, Text: h.Text})
			continue
		}
		content, err := deps.Files.ReadFile(deps.ProjectRoot, relPath)
		if err != nil {
			continue
		}
		if deps.Symbols.IsCodeAtPosition(content, language, h.Line, h.Column) {
			rows = append(rows, usageRow{Path: relPath, Line: h.Line, Column: h.Column, Text: h.Text})
		}
	}
	return rows
}

// relToProjectRoot converts a grep hit's path to project-relative form.
// internal/grepper.Search runs rg against deps.ProjectRoot (an absolute
// path), so hit paths come back absolute; everything downstream (file
// reads, symbol payload "path" values) is keyed by the project-relative
// form. A hit already relative (e.g. in tests) passes through unchanged.
// A hit outside projectRoot is dropped as not ours to resolve.
func relToProjectRoot(projectRoot, hitPath string) (string, bool) {
	if !filepath.IsAbs(hitPath) {
		return filepath.ToSlash(hitPath), true
	}
	rel, err := filepath.Rel(projectRoot, hitPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func contextFiles(ctx context.Context, deps ProjectDeps, contextName string) (map[string]bool, error) {
	filter := symbolMatchFilter(contextName, "any", "keyword")
	hits, err := deps.Store.Scroll(ctx, deps.CollectionName, filter, 1000)
	if err != nil {
		return nil, err
	}
	files := make(map[string]bool, len(hits))
	for _, h := range hits {
		if p := payloadString(h.Payload, "path"); p != "" {
			files[p] = true
		}
	}
	return files, nil
}

// --- get_dependency_graph ---

func (s *Server) registerGetDependencyGraph(build BuildDeps) {
	s.addTool(&mcp.Tool{
		Name:        "get_dependency_graph",
		Description: "Return dependency-graph nodes and edges: BFS from one file, from every file under a path prefix, or a full collection dump.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + collectionIDProp + `,
				"path": {"type": "string", "description": "BFS starting file."},
				"path_prefix": {"type": "string", "description": "BFS starting set: every file under this prefix."},
				"maxDepth": {"type": "integer", "description": "Max BFS hops (default 3)."},
				"includeExternal": {"type": "boolean", "description": "Include unresolved/external edges (default false)."}
			},
			"required": ["collectionId"]
		}`),
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArgs(req)
		if err != nil {
			return errResult(err.Error()), nil
		}
		deps, err := s.resolve(build, args)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return handleGetDependencyGraph(deps, args), nil
	})
}

type graphResult struct {
	Nodes []depgraph.Node `json:"nodes"`
	Edges []depgraph.Edge `json:"edges"`
}

func handleGetDependencyGraph(deps ProjectDeps, args map[string]any) *mcp.CallToolResult {
	path := getStringArg(args, "path")
	pathPrefix := getStringArg(args, "path_prefix")
	maxDepth := getIntArg(args, "maxDepth", 3)
	includeExternal := getBoolArg(args, "includeExternal")

	var nodes []depgraph.Node
	var edges []depgraph.Edge
	var err error

	switch {
	case path != "":
		nodes, edges, err = depgraph.BFS(deps.Graph, deps.CollectionName, path, maxDepth, includeExternal)
	case pathPrefix != "":
		var startEdges []depgraph.Edge
		startEdges, err = depgraph.GetEdgesByPathPrefix(deps.Graph, deps.CollectionName, pathPrefix)
		if err == nil {
			seen := map[string]bool{}
			for _, e := range startEdges {
				if seen[e.SourceFile] {
					continue
				}
				seen[e.SourceFile] = true
				var n []depgraph.Node
				var ed []depgraph.Edge
				n, ed, err = depgraph.BFS(deps.Graph, deps.CollectionName, e.SourceFile, maxDepth, includeExternal)
				if err != nil {
					break
				}
				nodes = append(nodes, n...)
				edges = append(edges, ed...)
			}
		}
	default:
		nodes, err = depgraph.GetNodesByCollection(deps.Graph, deps.CollectionName)
		if err == nil {
			edges, err = depgraph.GetEdgesByPathPrefix(deps.Graph, deps.CollectionName, "")
		}
	}
	if err != nil {
		return errResult("dependency graph: " + err.Error())
	}

	if !includeExternal {
		kept := make([]depgraph.Edge, 0, len(edges))
		for _, e := range edges {
			if e.TargetFile != nil {
				kept = append(kept, e)
			}
		}
		edges = kept
	}

	nodes = dedupNodes(nodes)
	return jsonResult(graphResult{Nodes: nodes, Edges: edges})
}

func dedupNodes(nodes []depgraph.Node) []depgraph.Node {
	seen := map[string]bool{}
	out := make([]depgraph.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.FilePath] {
			continue
		}
		seen[n.FilePath] = true
		out = append(out, n)
	}
	return out
}
