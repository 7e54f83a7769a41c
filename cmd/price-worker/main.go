package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finsum/internal/config"
	"finsum/internal/log"
	"finsum/internal/scrape"
	"finsum/internal/services"
	"finsum/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting price-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	source := scrape.NewPSXClient(cfg.PSXBaseURL, cfg.PriceFetchTimeout)
	svc := services.NewPriceService(repo, source, cfg.PriceConcurrency, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	n, err := svc.Run(ctx)
	if err != nil {
		logger.Error("Price refresh failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Price-worker finished", "updated", n)
}
