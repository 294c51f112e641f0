package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/youthcamp/portal/internal/apiclient"
	"github.com/youthcamp/portal/internal/config"
	"github.com/youthcamp/portal/internal/settings"
	"github.com/youthcamp/portal/internal/statestore"
	"github.com/youthcamp/portal/internal/web"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting portal",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// UI state store: redis when configured, in-memory otherwise
	var state statestore.KV
	if cfg.Redis.Address != "" {
		redisKV, err := statestore.NewRedisKV(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.StateTTL)
		if err != nil {
			slog.Warn("redis unavailable, using in-memory state store", "error", err)
			state = statestore.NewMemoryKV()
		} else {
			defer redisKV.Close()
			state = redisKV
			slog.Info("redis state store connected", "address", cfg.Redis.Address)
		}
	} else {
		state = statestore.NewMemoryKV()
	}

	// Remote camp API client
	api := apiclient.New(cfg.API.BaseURL,
		apiclient.WithAPIKey(cfg.API.Key),
		apiclient.WithTimeout(cfg.API.Timeout),
	)

	// Settings come from the remote API, or a local fixture in development
	var fetcher settings.Fetcher = api
	if cfg.API.Fixture != "" {
		slog.Info("serving settings from fixture", "path", cfg.API.Fixture)
		fetcher = settings.FixtureFetcher{Path: cfg.API.Fixture}
	}
	store := settings.New(fetcher)

	// Initial load is best-effort; the gate page offers a retry when it fails
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Load(initCtx); err != nil {
		slog.Warn("initial settings load failed", "error", err)
	}
	initCancel()

	// Setup HTTP server
	server, shellCache := web.NewServer(cfg.Server, cfg.Shell, api, store, state)
	shellCache.Activate(context.Background())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("portal stopped")
}
