package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsum/internal/amqp"
	"finsum/internal/config"
	"finsum/internal/core"
	"finsum/internal/log"
	"finsum/internal/notify"
	"finsum/internal/report"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting notify-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.DiscordWebhookURL == "" {
		logger.Error("notify-worker requires DISCORD_WEBHOOK_URL")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("notify-worker requires AMQP_URL")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	webhook := notify.NewWebhookClient(cfg.DiscordWebhookURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	consumerLogger := logger.WithComponent(log.ComponentNotify)
	err = amqpClient.ConsumeTransactionIngested(ctx, func(msg *amqp.TransactionIngestedMessage) error {
		return webhook.SendEmbed(ctx, ingestEmbed(msg))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		consumerLogger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	consumerLogger.Info("Notify-worker stopped")
}

// ingestEmbed renders a short notification for one ingested transaction.
func ingestEmbed(msg *amqp.TransactionIngestedMessage) report.Embed {
	title := "💳 New Expense Recorded"
	color := 0xff0000
	if msg.Type == core.Income {
		title = "💰 New Income Recorded"
		color = 0x00ff00
	}

	return report.Embed{
		Title: title,
		Color: color,
		Fields: []report.EmbedField{
			{Name: "Amount", Value: core.FormatAmount(msg.Amount), Inline: true},
			{Name: "Category", Value: msg.Category, Inline: true},
			{Name: "Description", Value: msg.Description},
		},
		Footer:    report.EmbedFooter{Text: fmt.Sprintf("Transaction #%d", msg.TransactionID)},
		Timestamp: msg.Timestamp.Format(time.RFC3339),
	}
}
