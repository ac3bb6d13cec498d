package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Roagert/fluidra-pool/internal/config"
	"github.com/Roagert/fluidra-pool/internal/coordinator"
	"github.com/Roagert/fluidra-pool/internal/registry"
	"github.com/Roagert/fluidra-pool/internal/server"
)

func main() {
	configPath := envOrDefault("FLUIDRA_CONFIG", config.DefaultPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLogger := server.NewLogger("info")
		bootLogger.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}

	logger := server.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New(logger)
	defer reg.Close()

	for _, account := range cfg.Accounts {
		a, err := reg.Create(account.ID, registry.Options{
			Username:  account.Username,
			Password:  account.Password,
			BaseURL:   cfg.BaseURL,
			RateLimit: account.RateLimitPerMinute,
			Coordinator: coordinator.Options{
				Interval: time.Duration(account.ScanIntervalMinutes) * time.Minute,
				DeviceID: account.DeviceID,
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Str("account", account.ID).Msg("failed to register account")
		}
		go a.Coordinator.Run(ctx)
	}

	handler := server.NewHandler(reg, logger)
	mux := handler.Router()
	mux.Handle("GET /metrics", server.MetricsHandler(server.MetricsRegistry()))

	httpServer := server.NewHTTPServer(cfg.HTTPAddr, mux)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("fluidra-poold listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
