package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"hamkharj/internal/api"
	"hamkharj/internal/config"
	"hamkharj/internal/metrics"
	"hamkharj/internal/session"
	"hamkharj/internal/webui"
	"hamkharj/pkg/logging"
)

func main() {
	// Load .env overrides before reading configuration
	_ = gotenv.Load()

	configPath := os.Getenv("HAMKHARJ_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting hamkharj web client",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("listen", cfg.Web.Address()))

	registry := prometheus.NewRegistry()
	apiMetrics := metrics.New(registry)

	store := session.NewStore(cfg.Session.TokenPath)
	sess := session.New(store, logger)
	client := api.NewClient(api.Options{
		BaseURL:        cfg.API.BaseURL,
		TokenSource:    sess.Token,
		OnUnauthorized: sess.Teardown,
		Timeout:        cfg.API.Timeout,
		Logger:         logger,
		Metrics:        apiMetrics,
	})
	sess.Bind(client)

	server, err := webui.NewServer(webui.Options{
		Web:      cfg.Web,
		Cache:    cfg.Cache,
		Session:  sess,
		Client:   client,
		Logger:   logger,
		Registry: registry,
	})
	if err != nil {
		logger.Fatal("Failed to initialize web UI", zap.Error(err))
	}

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("Failed to start web UI server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
