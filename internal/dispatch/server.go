package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the current release version reported at MCP handshake.
const Version = "0.1.0"

// ProjectDeps is the per-project handler dependency bundle a tool call
// builds once its collectionId resolves (spec.md §4.11). Every field is an
// interface so a test can substitute a fake without a real backend.
type ProjectDeps struct {
	ProjectRoot    string
	CollectionName string
	TopKDefault    int
	ScoreThreshold float64

	Embedder  Embedder
	Store     VectorSearcher
	Grep      Grepper
	Symbols   SymbolExtractor
	Files     FileReader
	Snapshots Snapshotter
	Graph     dbstore.Querier
}

// Server wraps the MCP server with the six read-only code-navigation tools.
type Server struct {
	mcp        *mcp.Server
	resolver   ProjectResolver
	handlers   map[string]mcp.ToolHandler
	onActivity func()
}

// BuildDeps constructs a ProjectDeps for one resolved project. Supplied by
// main at wiring time so Server never imports the concrete embeddings/
// vectorstore/dbstore packages directly.
type BuildDeps func(projectRoot, collectionName string, topKDefault int, scoreThreshold float64) (ProjectDeps, error)

// NewServer creates a Server with all tools registered. resolver maps a
// collectionId to its project; build turns that project's settings into a
// concrete ProjectDeps.
func NewServer(resolver ProjectResolver, build BuildDeps) *Server {
	srv := &Server{
		resolver: resolver,
		handlers: make(map[string]mcp.ToolHandler),
	}

	srv.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "codeindexd",
			Version: Version,
		},
		&mcp.ServerOptions{},
	)

	srv.registerTools(build)
	return srv
}

// MCPServer returns the underlying MCP server, for transport wiring.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// OnActivity registers a hook invoked on every handled tool call, in
// addition to the filesystem-event activity watch.Manager already reports.
// spec.md §4.12/§5 require lastActivityTime to be refreshed on both, so an
// agent actively calling tools over a quiescent filesystem never trips the
// inactivity watchdog mid-session.
func (s *Server) OnActivity(fn func()) {
	s.onActivity = fn
}

func (s *Server) addTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	wrapped := func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.onActivity != nil {
			s.onActivity()
		}
		return handler(ctx, req)
	}
	s.mcp.AddTool(tool, wrapped)
	s.handlers[tool.Name] = wrapped
}

// CallTool invokes a registered tool handler directly, bypassing transport.
// Used by tests.
func (s *Server) CallTool(ctx context.Context, name string, argsJSON json.RawMessage) (*mcp.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if len(argsJSON) == 0 {
		argsJSON = json.RawMessage(`{}`)
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: argsJSON},
	}
	return handler(ctx, req)
}

// ToolNames returns all registered tool names in sorted order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve looks up the project owning collectionId and builds its deps
// bundle. Returns an error a handler turns directly into errResult.
func (s *Server) resolve(build BuildDeps, args map[string]any) (ProjectDeps, error) {
	collectionID := getStringArg(args, "collectionId")
	if collectionID == "" {
		return ProjectDeps{}, fmt.Errorf("missing collectionId")
	}
	root, entry, ok := s.resolver.ProjectForCollection(collectionID)
	if !ok {
		return ProjectDeps{}, fmt.Errorf("unknown collection: %s", collectionID)
	}
	return build(root, entry.CollectionName, entry.Settings.TopKDefault, entry.Settings.ScoreThreshold)
}

// --- helpers shared by every handler ---

func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(b)}}}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func getIntArg(args map[string]any, key string, defaultVal int) int {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	f, ok := v.(float64)
	if !ok {
		return defaultVal
	}
	return int(f)
}

func getBoolArg(args map[string]any, key string) bool {
	v, ok := args[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
