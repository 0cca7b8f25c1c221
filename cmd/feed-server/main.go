package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/config"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/feed"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
)

func main() {
	configPath := flag.String("config", "devfeed.yaml", "YAML config file (optional)")
	envFile := flag.String("env-file", ".env", "Environment file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: load config: %v", err)
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		log.Fatalf("FATAL: apply environment: %v", err)
	}

	archive, err := storage.OpenArchive(cfg.DataDir)
	if err != nil {
		log.Fatalf("FATAL: open archive: %v", err)
	}
	defer archive.Close()

	builder := &feed.Builder{Archive: archive, LogsDir: cfg.LogsDir, DefaultProject: cfg.Defaults.ProjectName}
	server := feed.NewServer(builder, cfg.Feed.CacheTTL)

	addr := ":" + cfg.Feed.Port
	log.Printf("Feed server starting on %s", addr)
	log.Printf("  Archive:   %s", archive.Path())
	log.Printf("  Logs dir:  %s", cfg.LogsDir)
	log.Printf("  Cache TTL: %v", cfg.Feed.CacheTTL)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
