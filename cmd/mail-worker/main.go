package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finsum/internal/amqp"
	"finsum/internal/config"
	"finsum/internal/log"
	"finsum/internal/mail"
	"finsum/internal/services"
	"finsum/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting mail-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		logger.Error("Gmail ingestion requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The broker is optional; without it transactions are still persisted,
	// just not announced.
	var publisher services.IngestPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - ingest events will not be published")
	}

	openBox := func(ctx context.Context, ut storage.UserTokens) (services.Mailbox, error) {
		return mail.NewClient(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, ut.AccessToken, ut.RefreshToken)
	}

	svc := services.NewIngestService(repo, openBox, publisher, cfg.BankSenders, cfg.MailLookback, logger)

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
		logger.Error("Mail ingestion failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Mail-worker finished", "transactions", n)
}
