package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmuslimabdulj/calcvault/internal/assistant"
	"github.com/mmuslimabdulj/calcvault/internal/config"
	httpHandler "github.com/mmuslimabdulj/calcvault/internal/delivery/http"
	"github.com/mmuslimabdulj/calcvault/internal/delivery/ws"
	"github.com/mmuslimabdulj/calcvault/internal/middleware"
	"github.com/mmuslimabdulj/calcvault/internal/storage"
	"github.com/mmuslimabdulj/calcvault/internal/usecase"
)

func main() {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, err := storage.Open(cfg)
	if err != nil {
		slog.Error("Failed to open storage", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer adapter.Close()

	store := usecase.NewStore(adapter, cfg.StorageKey, logger)
	if err := store.Load(ctx); err != nil {
		// best-effort mirror: keep serving from memory
		slog.Warn("Starting with a fresh state", "error", err, "writes_suspended", store.Degraded())
	}

	generator := newGenerator(ctx, cfg, logger)
	bridge := usecase.NewBridge(store, generator, usecase.BridgeConfig{
		Model:   cfg.AssistantModel,
		Timeout: cfg.AssistantTimeout,
	}, logger)
	calc := usecase.NewCalculator(cfg.UnlockCode, logger)

	hub := ws.NewHub(cfg.MaxHistorySize, logger)
	hub.Prime(store.Snapshot())
	go hub.Run(ctx)
	store.Subscribe(hub.PublishState)

	limiters := httpHandler.Limiters{
		Auth: middleware.NewIPRateLimiter(cfg.RateLimitAuth, int(cfg.RateLimitAuth)*2+1, 5*time.Minute),
		API:  middleware.NewIPRateLimiter(cfg.RateLimitAPI, int(cfg.RateLimitAPI)*2, 5*time.Minute),
	}
	defer limiters.Auth.Stop()
	defer limiters.API.Stop()

	handler := httpHandler.NewHandler(store, bridge, calc, hub, cfg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler.NewRouter(handler, limiters),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Calculator running", "addr", "http://localhost:"+cfg.Port, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           httpHandler.NewMetricsRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("Metrics listener running", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	stop()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server forced to shutdown", "error", err)
		}
	}

	// let in-flight assistant replies land before the adapter closes
	bridge.Wait()

	slog.Info("Server exited gracefully")
}

// newLogger builds the process logger; silent/off discards everything
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsSilent() {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if os.Getenv("APP_ENV") == "development" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newGenerator returns the Gemini client, or a generator that always fails
// when no key is configured so every exchange yields the fallback notice
func newGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) assistant.Generator {
	if cfg.AssistantAPIKey == "" {
		slog.Warn("No assistant API key configured; assistant replies will fall back")
		return assistant.Unavailable{}
	}
	g, err := assistant.NewGemini(ctx, cfg.AssistantAPIKey, logger)
	if err != nil {
		slog.Warn("Assistant unavailable", "error", err)
		return assistant.Unavailable{}
	}
	return g
}
