package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyduel/skyduel/internal/api"
	"github.com/skyduel/skyduel/internal/factory"
	"github.com/skyduel/skyduel/internal/protocol"
	redisstorage "github.com/skyduel/skyduel/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}
	if addr := os.Getenv("SKYDUEL_ADDR"); addr != "" {
		cfg.ProtocolConfig = protocol.Config{Addr: addr}
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create the HTTP observer surface
	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Accounts: app.Accounts,
		Hub:      app.Hub,
	})
	httpConfig := api.DefaultServerConfig()
	if addr := os.Getenv("SKYDUEL_HTTP_ADDR"); addr != "" {
		httpConfig.Addr = addr
	}
	httpServer := api.NewServer(router, httpConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Simulation tick runs until the context is cancelled
	go app.Sim.Run(ctx)

	// Start both servers
	errCh := make(chan error, 2)
	go func() {
		errCh <- app.GameServer.Start()
	}()
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info("server started",
		slog.String("game_addr", app.GameServer.Addr()),
		slog.String("http_addr", httpServer.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if err := app.GameServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("game shutdown error", slog.String("error", err.Error()))
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
