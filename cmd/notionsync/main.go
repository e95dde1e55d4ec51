// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/notionsync-go/internal/config"
	"github.com/olegiv/notionsync-go/internal/handler"
	"github.com/olegiv/notionsync-go/internal/logging"
	"github.com/olegiv/notionsync-go/internal/media"
	"github.com/olegiv/notionsync-go/internal/notion"
	"github.com/olegiv/notionsync-go/internal/scheduler"
	"github.com/olegiv/notionsync-go/internal/store"
	"github.com/olegiv/notionsync-go/internal/sync"
	"github.com/olegiv/notionsync-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "notionsync - Notion content sync service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_NOTION_API_TOKEN  Notion integration token (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_DB_PATH           SQLite database path (default: ./data/notionsync.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_SERVER_PORT       Server port (default: 8090)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_ADMIN_TOKEN       Bearer token guarding the trigger API (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_SYNC_INTERVAL     Scheduled sync interval: hourly|daily|manual (default: hourly)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NSYNC_UPLOADS_DIR       Featured image storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/notionsync-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("notionsync %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log database
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Notion client and connection check
	client := notion.NewClient(cfg.NotionAPIToken, cfg.NotionBaseURL, logger)
	if err := client.TestConnection(context.Background()); err != nil {
		// A failed check is not fatal: the token may gain access later,
		// and every sync reports its own errors.
		var apiErr *notion.APIError
		if errors.As(err, &apiErr) && apiErr.IsAuthError() {
			slog.Warn("notion rejected the API token, check NSYNC_NOTION_API_TOKEN", "error", err)
		} else {
			slog.Warn("notion connection check failed", "error", err)
		}
	} else {
		slog.Info("notion connection verified")
	}

	// Sync pipeline
	importer := media.NewImporter(db, cfg.UploadsDir, logger)
	syncer := sync.New(client, db, importer, logger)

	// Scheduled syncs
	sched := scheduler.New(db, syncer, cfg.SyncInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// HTTP trigger API
	h := handler.NewHandler(db, syncer, client, versionInfo.String(), logger)
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           h.Routes(cfg.AdminToken),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Minute, // sync triggers block until the sync finishes
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
