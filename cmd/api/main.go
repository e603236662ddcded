package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/wolfman30/booking-assistant/cmd/mainconfig"
	"github.com/wolfman30/booking-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/booking-assistant/internal/config"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, logging.WithService("booking-api"))
	logger.Info("starting booking assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"variant", cfg.SiteVariant,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := bootstrap.Deps{
		Redis:    bootstrap.BuildRedisClient(ctx, cfg, logger, true),
		Postgres: bootstrap.BuildPostgresPool(ctx, cfg, logger),
		AWS:      loadAWS(ctx, cfg, logger),
	}
	defer closeDeps(deps, logger)

	handler, err := bootstrap.BuildAPI(ctx, cfg, deps, logger)
	if err != nil {
		logger.Error("failed to build API", "error", err)
		os.Exit(1)
	}

	// The upstream webhook may take up to its own timeout, so writes get headroom beyond it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WebhookTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

// loadAWS returns nil when Bedrock is not configured or the SDK config cannot be loaded.
func loadAWS(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *aws.Config {
	if !mainconfig.BedrockEnabled(cfg) {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; bedrock fallback disabled", "error", err)
		return nil
	}
	return &awsCfg
}

func closeDeps(deps bootstrap.Deps, logger *logging.Logger) {
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Warn("redis close failed", "error", err)
		}
	}
	if deps.Postgres != nil {
		deps.Postgres.Close()
	}
}
