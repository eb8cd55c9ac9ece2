package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/noah-isme/university-api/internal/config"
	"github.com/noah-isme/university-api/internal/middleware"
	"github.com/noah-isme/university-api/internal/ui"
)

func main() {
	cfg, err := config.LoadUI()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("app", cfg.AppName+" UI").Logger()

	client := ui.NewClient(cfg.UI.APIBaseURL, 5*time.Second, logger)

	app := fiber.New(fiber.Config{AppName: cfg.AppName + " UI"})
	app.Use(recover.New())
	app.Use(middleware.CorrelationID())
	ui.NewHandler(client, logger).Register(app)

	go func() {
		logger.Info().Str("addr", cfg.UI.Address()).Str("api", cfg.UI.APIBaseURL).Msg("starting ui server")
		if err := app.Listen(cfg.UI.Address()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start ui server")
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
