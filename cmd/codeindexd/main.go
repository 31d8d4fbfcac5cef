// Command codeindexd runs the per-project code indexing daemon: it keeps a
// vector index and dependency graph in sync with one or more registered
// project directories and serves them over MCP (stdio or streamable HTTP).
// Wiring mirrors the teacher's cmd/codebase-memory-mcp/main.go (open the
// store, build the tool server, run it over a transport, close on exit).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentindex/codeindexd/internal/config"
	"github.com/agentindex/codeindexd/internal/dbstore"
	"github.com/agentindex/codeindexd/internal/dispatch"
	"github.com/agentindex/codeindexd/internal/embeddings"
	"github.com/agentindex/codeindexd/internal/lifecycle"
	"github.com/agentindex/codeindexd/internal/logging"
	"github.com/agentindex/codeindexd/internal/syncengine"
	"github.com/agentindex/codeindexd/internal/vectorstore"
	"github.com/agentindex/codeindexd/internal/watch"
)

var version = "dev"

func main() {
	httpAddr := flag.String("http", "", "listen address for the streamable HTTP transport, e.g. :8731 (default: stdio transport)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("codeindexd", version)
		os.Exit(0)
	}

	if err := run(*httpAddr); err != nil {
		log.Fatalf("codeindexd: %v", err)
	}
}

func run(httpAddr string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, loggingCleanup, err := logging.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer loggingCleanup()
	slog.SetDefault(logger)

	db, err := dbstore.Open()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	runtimeDir := filepath.Dir(config.UserConfigPath())
	svc, ctx, err := lifecycle.NewService(context.Background(),
		filepath.Join(runtimeDir, "codeindexd.pid"),
		filepath.Join(runtimeDir, "codeindexd.port"))
	if err != nil {
		return err
	}

	// One vector-store backend and one embeddings endpoint serve every
	// registered project, each in its own collection: per-project settings
	// override VectorSize/MaxChunkLines/TopKDefault/ScoreThreshold, but not
	// VectorStoreURL/EmbeddingsURL/EmbedModel, matching syncengine.Engine's
	// single-Deps.Store/Deps.Embedder design (see DESIGN.md).
	defaults := config.Defaults()
	store := vectorstore.New(defaults.VectorStoreURL)
	embedder := embeddings.New(defaults.EmbeddingsURL, defaults.EmbedModel)

	build := func(projectRoot, collectionName string, topKDefault int, scoreThreshold float64) (dispatch.ProjectDeps, error) {
		return dispatch.ProjectDeps{
			ProjectRoot:    projectRoot,
			CollectionName: collectionName,
			TopKDefault:    topKDefault,
			ScoreThreshold: scoreThreshold,
			Embedder:       embedder,
			Store:          store,
			Grep:           dispatch.RipgrepGrepper{},
			Symbols:        dispatch.TreeSitterSymbols{},
			Files:          dispatch.OSFileReader{},
			Snapshots:      dispatch.SnapshotFileLister{},
			Graph:          dispatch.DBGraphQuerier(db),
		}, nil
	}

	srv := dispatch.NewServer(cfg, build)
	srv.OnActivity(svc.Touch)

	engine := syncengine.New(syncengine.Deps{Config: cfg, DB: db, Store: store, Embedder: embedder})
	manager := watch.NewManager(ctx, engine, svc.Touch, watch.DefaultOptions())
	for path := range cfg.Projects {
		if err := manager.Watch(path); err != nil {
			slog.Warn("main.watch_err", slog.String("project", path), slog.String("error", err.Error()))
		}
	}
	defer manager.StopAll()

	svc.WatchSignals()

	if httpAddr != "" {
		return runHTTP(ctx, svc, srv, httpAddr)
	}
	return runStdio(ctx, srv)
}

func runStdio(ctx context.Context, srv *dispatch.Server) error {
	slog.Info("main.transport_started", slog.String("transport", "stdio"))
	return srv.MCPServer().Run(ctx, &mcp.StdioTransport{})
}

// runHTTP serves the MCP streamable-HTTP transport behind a chi router
// mounting /mcp and a /healthz liveness endpoint, grounded on
// vvoland-cagent/pkg/mcp/server.go's StartHTTPServer and
// ziadkadry99-auto-doc/internal/server's chi router setup.
func runHTTP(ctx context.Context, svc *lifecycle.Service, srv *dispatch.Server, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	tcpAddr, ok := ln.Addr().(*net.TCPAddr)
	if ok {
		if err := svc.AdvertisePort(tcpAddr.IP.String(), tcpAddr.Port); err != nil {
			slog.Warn("main.advertise_port_err", slog.String("error", err.Error()))
		}
	}

	mcpHandler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return srv.MCPServer()
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/mcp", mcpHandler)

	httpServer := &http.Server{Handler: r}
	slog.Info("main.transport_started", slog.String("transport", "http"), slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
