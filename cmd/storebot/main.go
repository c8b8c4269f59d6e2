package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/app"
	"github.com/metalofmeat1/telegram-bot-for-selling/internal/config"
	pkgconfig "github.com/metalofmeat1/telegram-bot-for-selling/pkg/config"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/logger"
)

func main() {
	// Local development reads .env; real environment variables win.
	if err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.New("storefront-bot", cfg.LogLevel)
	log.Info("starting storefront bot",
		slog.String("environment", cfg.Environment),
		slog.String("mode", cfg.TelegramMode),
		slog.Int("http_port", cfg.HTTPPort),
	)

	// Create the application with all dependencies wired.
	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storefront bot stopped")
}
