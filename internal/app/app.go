// Package app wires configuration, storage, event publishing and HTTP routes
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"

	"inventorycart/internal/config"
	"inventorycart/internal/database"
	"inventorycart/internal/events"
	"inventorycart/internal/handlers"
	"inventorycart/internal/metrics"
	"inventorycart/internal/middleware"
	"inventorycart/internal/repositories"
	"inventorycart/internal/services"
	kafkapub "inventorycart/pkg/kafka"
	"inventorycart/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is a fully wired service.
type App struct {
	Fiber *fiber.App

	InventoryService *services.InventoryService
	CartService      *services.CartService

	logger  zerolog.Logger
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// Options override parts of the wiring, mainly for tests.
type Options struct {
	// DB, when set, is used instead of opening cfg.DB.
	DB *gorm.DB
	// Publisher, when set, replaces the broker publishers built from cfg.
	Publisher events.Publisher
}

// New builds the App described by cfg.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	a := &App{logger: logger}

	inventoryRepo, cartRepo, err := a.buildRepositories(ctx, cfg, opts.DB)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher := opts.Publisher
	if publisher == nil {
		if publisher, err = a.buildPublisher(cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.InventoryService = services.NewInventoryService(inventoryRepo, publisher)
	a.CartService = services.NewCartService(cartRepo, publisher)

	a.Fiber = fiber.New(fiber.Config{
		AppName:               "inventorycart",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})
	a.Fiber.Use(middleware.RequestLogger(logger))
	a.Fiber.Use(middleware.Metrics())
	a.Fiber.Use(recover.New())

	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.NewHealthHandler(a.InventoryService, cfg.EventsBroker).RegisterRoutes(a.Fiber)

	inventoryHandler := handlers.NewInventoryHandler(a.InventoryService)
	cartHandler := handlers.NewCartHandler(a.CartService)
	for _, router := range []fiber.Router{a.Fiber, a.Fiber.Group("/api/v1")} {
		inventoryHandler.RegisterRoutes(router)
		cartHandler.RegisterRoutes(router)
	}
	return a, nil
}

func (a *App) buildRepositories(ctx context.Context, cfg config.Config, db *gorm.DB) (repositories.InventoryRepository, repositories.CartRepository, error) {
	if db == nil && cfg.DB.Driver == config.DriverMemory {
		a.logger.Warn().Msg("using in-memory storage; data is lost on shutdown")
		inventory := repositories.NewMemoryInventoryRepository()
		return inventory, repositories.NewMemoryCartRepository(inventory), nil
	}

	if db == nil {
		var err error
		if db, err = database.Open(ctx, cfg.DB); err != nil {
			return nil, nil, err
		}
		a.addCloser("database", func() error { return database.Close(db) })
		a.logger.Info().Str("driver", cfg.DB.Driver).Msg("database connected")
	}
	return repositories.NewGORMInventoryRepository(db), repositories.NewGORMCartRepository(db), nil
}

func (a *App) buildPublisher(cfg config.Config) (events.Publisher, error) {
	var publishers events.MultiPublisher

	if cfg.RabbitMQEnabled() {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitQueue})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.addCloser("rabbitmq", mq.Close)
		publishers = append(publishers, mq)

		if cfg.EventsAudit {
			if err := mq.ConsumeEvents(rabbitmq.AuditHandler); err != nil {
				return nil, fmt.Errorf("failed to start audit consumer: %w", err)
			}
			a.logger.Info().Str("queue", cfg.RabbitQueue).Msg("audit consumer started")
		}
	}

	if cfg.KafkaEnabled() {
		kp := kafkapub.NewPublisher(kafkapub.NewWriter(kafkapub.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}))
		a.addCloser("kafka", kp.Close)
		publishers = append(publishers, kp)
	}

	var broker events.Publisher
	switch len(publishers) {
	case 0:
		return events.NopPublisher{}, nil
	case 1:
		broker = publishers[0]
	default:
		broker = publishers
	}

	// Registered last so it drains before the broker clients close.
	async := events.NewAsyncPublisher(broker, cfg.EventsQueueSize, cfg.EventsPublishTimeout, a.reportDeliveryFailure)
	a.addCloser("event queue", async.Close)
	return async, nil
}

func (a *App) reportDeliveryFailure(event events.Event, err error) {
	metrics.EventsPublished.WithLabelValues(event.Type, "delivery_error").Inc()
	a.logger.Warn().Err(err).Str("event_type", event.Type).Str("key", event.Key).Msg("failed to deliver event")
}

func (a *App) addCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Close releases brokers and storage in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error().Err(err).Str("resource", c.name).Msg("failed to close")
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
