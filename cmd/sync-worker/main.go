package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	consumer "github.com/loftstay/loftstay-backend/internal/consumers/reservations"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/reservations"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db"
	"github.com/loftstay/loftstay-backend/pkg/idempotency"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"github.com/loftstay/loftstay-backend/pkg/pubsub"
	"github.com/loftstay/loftstay-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "sync-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.ReservationsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "reservations subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	availabilityMetrics := metrics.NewAvailabilityMetrics(prometheus.DefaultRegisterer)
	availabilityService, err := availability.NewService(availability.ServiceParams{
		Units:           units.NewRepository(dbClient.DB()),
		Repo:            availability.NewRepository(dbClient.DB()),
		Validator:       daterange.NewValidator(cfg.Availability.BookingHorizonMonths, nil),
		Metrics:         availabilityMetrics,
		MaxCalendarDays: cfg.Availability.MaxCalendarDays,
	})
	requireResource(ctx, logg, "availability service", err)

	syncService, err := availsync.NewService(availsync.ServiceParams{
		Locks:        locks.NewRepository(dbClient.DB()),
		Reservations: reservations.NewRepository(dbClient.DB()),
		Availability: availabilityService,
		Logger:       logg,
		Metrics:      availabilityMetrics,
	})
	requireResource(ctx, logg, "availability sync service", err)

	service, err := consumer.NewConsumer(syncService, manager, subscription, logg)
	requireResource(ctx, logg, "reservation event consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  cfg.Service.Kind,
		"subscription": cfg.PubSub.ReservationsSubscription,
	})
	logg.Info(runCtx, "sync worker ready")

	go func() {
		if err := metrics.Serve(runCtx, cfg.App.MetricsAddr, prometheus.DefaultGatherer, logg); err != nil {
			logg.Error(runCtx, "metrics listener stopped", err)
		}
	}()

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "sync worker failed", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "sync worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
