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

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/feed"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/loader"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/normalize"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/server"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/store"
)

func main() {
	transport := flag.String("transport", "stdio", "Transport mode: stdio or http")
	port := flag.String("port", "8081", "HTTP port (only used with --transport http)")
	configPath := flag.String("config", "devfeed.yaml", "YAML config file (optional)")
	envFile := flag.String("env-file", ".env", "Environment file (optional)")
	dataDir := flag.String("data-dir", "", "Directory for the chat-log archive (overrides config)")
	endpoint := flag.String("endpoint", "", "Projects document URL; empty builds it from the archive (overrides config)")
	logsDir := flag.String("logs-dir", "", "Directory of JSON chat logs merged into the feed (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *logsDir != "" {
		cfg.LogsDir = *logsDir
	}

	archive, err := storage.OpenArchive(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer archive.Close()

	normalizer, err := normalize.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build normalizer: %v", err)
	}

	var fetcher loader.Fetcher
	if cfg.Endpoint != "" {
		log.Printf("Loading updates from %s", cfg.Endpoint)
		fetcher = loader.NewHTTP(cfg.Endpoint, cfg.FetchTimeout)
	} else {
		log.Printf("Loading updates from archive %s", archive.Path())
		fetcher = &feed.Builder{Archive: archive, LogsDir: cfg.LogsDir, DefaultProject: cfg.Defaults.ProjectName}
	}

	// Build the MCP server with all tools registered
	srv := server.New(store.New(fetcher, normalizer), archive, cfg.Defaults.ProjectName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		log.Println("devfeed MCP server starting (stdio)")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		log.Printf("devfeed MCP server listening on %s", addr)
		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	default:
		log.Fatalf("Unknown transport: %s (use stdio or http)", *transport)
	}
}
