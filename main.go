package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inventorycart/internal/app"
	"inventorycart/internal/config"
	"inventorycart/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.AppPort).Msg("starting server")
		serveErr <- application.Fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	}

	if err := application.Fiber.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}
	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("error releasing resources")
	}
	logger.Info().Msg("server gracefully stopped")
}
