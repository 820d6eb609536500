package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/graphmem/graphmem/internal/config"
	"github.com/graphmem/graphmem/internal/logging"
	"github.com/graphmem/graphmem/internal/persistence"
	"github.com/graphmem/graphmem/internal/server"
	"github.com/graphmem/graphmem/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment when set.
	transport := flag.String("transport", cfg.Transport, "Transport mode: stdio or http")
	port := flag.String("port", cfg.Port, "HTTP port (only used with --transport http)")
	dataDir := flag.String("data-dir", cfg.DataDir, "Directory for workspace data")
	backend := flag.String("backend", cfg.Backend, "Storage backend: file or sqlite")
	flag.Parse()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store, err := openStore(*backend, *dataDir)
	if err != nil {
		logger.Fatal("open store", zap.String("backend", *backend), zap.Error(err))
	}
	defer store.Close()

	svc := workspace.New(store, logger)
	srv := server.New(svc)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		logger.Info("graphmem server starting", zap.String("transport", "stdio"), zap.String("backend", *backend))
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		logger.Info("graphmem server listening", zap.String("addr", addr), zap.String("backend", *backend))
		if err := http.ListenAndServe(addr, handler); err != nil {
			logger.Fatal("http server error", zap.Error(err))
		}
	default:
		logger.Fatal("unknown transport", zap.String("transport", *transport))
	}
}

func openStore(backend, dataDir string) (persistence.Store, error) {
	if backend == config.BackendSQLite {
		return persistence.OpenSQLite(dataDir)
	}
	return persistence.NewFileStore(dataDir)
}
