package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/university-api/internal/config"
	"github.com/noah-isme/university-api/internal/database"
	"github.com/noah-isme/university-api/internal/handler"
	"github.com/noah-isme/university-api/internal/middleware"
	"github.com/noah-isme/university-api/internal/observability"
	"github.com/noah-isme/university-api/internal/repository"
	"github.com/noah-isme/university-api/internal/router"
	"github.com/noah-isme/university-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	provider, err := database.NewPostgresProvider(cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure database")
	}
	defer provider.Close()

	schemaCtx, cancelSchema := context.WithCancel(context.Background())
	defer cancelSchema()
	database.NewSchemaManager(provider, logger).CreateTablesAsync(schemaCtx)

	var events *service.EventPublisher
	if cfg.NATSURL != "" {
		natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("student events disabled")
		} else {
			defer natsConn.Drain()
			events = service.NewEventPublisher(natsConn, cfg.NATSSubject, logger)
		}
	}

	studentRepo := repository.NewStudentRepository(provider)
	studentService := service.NewStudentService(studentRepo, service.NewValidator(), events, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: true})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler: studentHandler,
		MetricsHandler: observability.MetricsHandler(),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("starting api server")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("app", cfg.AppName).Logger()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
