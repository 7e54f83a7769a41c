package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finsum/internal/config"
	"finsum/internal/core"
	"finsum/internal/log"
	"finsum/internal/notify"
	"finsum/internal/services"
	"finsum/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// The user can be passed as an argument or configured via USER_EMAIL.
	email := cfg.UserEmail
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if email == "" {
		logger.Error("No user email given: pass it as an argument or set USER_EMAIL")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var sender services.EmbedSender
	if cfg.DiscordWebhookURL != "" {
		sender = notify.NewWebhookClient(cfg.DiscordWebhookURL)
		logger.Info("Discord webhook delivery enabled")
	} else {
		logger.Info("No webhook configured - reports go to stdout and file")
	}

	svc := services.NewSummaryService(repo, sender, cfg.ReportDir, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SummaryCron == "" {
		if err := svc.Run(ctx, email); err != nil {
			exitCode := 1
			if errors.Is(err, core.ErrUserNotFound) {
				exitCode = 2
			}
			os.Exit(exitCode)
		}
		return
	}

	// Scheduled mode: run on the configured cron expression until signalled.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SummaryCron, func() {
		if err := svc.Run(ctx, email); err != nil {
			logger.Error("Scheduled summary run failed", log.FieldError, err)
		}
	})
	if err != nil {
		logger.Error("Invalid SUMMARY_CRON expression", log.FieldError, err, "cron", cfg.SummaryCron)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Summary scheduler started", "cron", cfg.SummaryCron, log.FieldUserEmail, email)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	<-scheduler.Stop().Done()
	logger.Info("Summary scheduler stopped")
}
