package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mirrorcat/gameversions/internal/api"
	"github.com/mirrorcat/gameversions/internal/catalog"
	"github.com/mirrorcat/gameversions/internal/common"
	"github.com/mirrorcat/gameversions/internal/config"
	"github.com/mirrorcat/gameversions/internal/mirror"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("mirrord: .env file not loaded", "error", err)
	} else {
		logger.Info("mirrord: environment loaded from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("mirrord: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Addr(), "listen address")
	dbPath := flag.String("db", cfg.DBPath, "path to the SQLite mirror database")
	staticDir := flag.String("static", cfg.StaticDir, "directory of static assets")
	ttl := flag.Duration("ttl", cfg.TTL, "mirror time-to-live before a refresh")
	flag.Parse()

	logger.Info("mirrord: startup initiated", "addr", *addr, "db", *dbPath, "ttl", *ttl)

	store, err := mirror.Open(*dbPath)
	if err != nil {
		logger.Error("mirrord: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("mirrord: schema bootstrap failed", "error", err)
		fmt.Println("schema error:", err)
		os.Exit(1)
	}

	client := catalog.NewClient(catalog.Config{
		BaseURL: cfg.UpstreamURL,
		Token:   cfg.APIToken,
		Timeout: cfg.UpstreamTimeout,
	})
	svc := mirror.NewService(store, client, *ttl)

	// Populate the mirror before accepting traffic. A failed first fetch
	// aborts startup rather than serving an empty mirror.
	start := time.Now()
	if err := svc.Refresh(ctx); err != nil {
		logger.Error("mirrord: initial refresh failed", "error", err)
		fmt.Println("refresh error:", err)
		os.Exit(1)
	}
	logger.Info("mirrord: initial refresh complete", "dur", time.Since(start))

	server, err := api.NewServer(svc, *staticDir)
	if err != nil {
		logger.Error("mirrord: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("mirrord: server listening", "addr", *addr)
	fmt.Printf("Running on: http://%s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("mirrord: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
