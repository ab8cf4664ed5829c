package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/shoplist/pkg/app"
	"github.com/ghuser/shoplist/pkg/cache"
	"github.com/ghuser/shoplist/pkg/config"
	"github.com/ghuser/shoplist/pkg/events"
	"github.com/ghuser/shoplist/pkg/logger"
	"github.com/ghuser/shoplist/pkg/telemetry"
	"github.com/ghuser/shoplist/services/item/application/subscribers"
	itemEvents "github.com/ghuser/shoplist/services/item/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("component", "worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	appConfig := &app.Application{
		Logger:       log,
		EventBus:     eventBus,
		ListCacheTTL: cfg.ListCacheTTL,
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		appConfig.Redis = redisClient
		log.Info("redis connected")
	} else {
		log.Info("REDIS_URL not set, events are only logged")
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	var inv subscribers.Invalidator
	if a.Redis != nil {
		inv = cache.NewItemListCache(a.Redis, a.ListCacheTTL)
	}
	invalidator := subscribers.NewCacheInvalidator(inv, a.Logger)

	for _, topic := range itemEvents.Topics {
		errCh, err := a.EventBus.Subscribe(ctx, topic, invalidator.Handler(topic))
		if err != nil {
			return err
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error",
					"topic", topic,
					"error", err,
				)
				telemetry.CaptureEventError(ctx, topic, "", err)
			}
		}(topic)
	}

	a.Logger.Info("event subscribers registered", "topics", itemEvents.Topics)
	return nil
}
