package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/internal/cron"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/reservations"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"github.com/loftstay/loftstay-backend/pkg/migrate"
	"github.com/loftstay/loftstay-backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	boot := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		logg.Warn(boot, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	fatalIf(boot, logg, "load config", err)
	cfg.Service.Kind = serviceKind

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(boot, cfg.DB, logg)
	fatalIf(boot, logg, "bootstrap database", err)
	defer closeQuietly(logg, "database", dbClient.Close)

	fatalIf(boot, logg, "run dev migrations", migrate.MaybeRunDev(boot, cfg, logg, dbClient))

	redisClient, err := redis.New(boot, cfg.Redis, logg)
	fatalIf(boot, logg, "bootstrap redis", err)
	defer closeQuietly(logg, "redis", redisClient.Close)

	registerer := prometheus.DefaultRegisterer
	availabilityMetrics := metrics.NewAvailabilityMetrics(registerer)

	availabilityService, err := availability.NewService(availability.ServiceParams{
		Units:           units.NewRepository(dbClient.DB()),
		Repo:            availability.NewRepository(dbClient.DB()),
		Validator:       daterange.NewValidator(cfg.Availability.BookingHorizonMonths, nil),
		Metrics:         availabilityMetrics,
		MaxCalendarDays: cfg.Availability.MaxCalendarDays,
	})
	fatalIf(boot, logg, "create availability service", err)

	syncService, err := availsync.NewService(availsync.ServiceParams{
		Locks:        locks.NewRepository(dbClient.DB()),
		Reservations: reservations.NewRepository(dbClient.DB()),
		Availability: availabilityService,
		Logger:       logg,
		Metrics:      availabilityMetrics,
	})
	fatalIf(boot, logg, "create availability sync service", err)

	sweep, err := cron.NewLockExpirySweepJob(cron.LockExpirySweepJobParams{Logger: logg, Sweeper: syncService})
	fatalIf(boot, logg, "create lock expiry sweep job", err)
	resync, err := cron.NewAvailabilitySyncJob(cron.AvailabilitySyncJobParams{Logger: logg, Synchronizer: syncService})
	fatalIf(boot, logg, "create availability sync job", err)

	registry, err := cron.NewRegistry(sweep, resync)
	fatalIf(boot, logg, "register cron jobs", err)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(serviceKind), cfg.Cron.LockTTL)
	fatalIf(boot, logg, "create cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registerer),
		Interval: cfg.Cron.Interval,
	})
	fatalIf(boot, logg, "create cron service", err)

	ctx, stop := signal.NotifyContext(boot, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "serviceKind": cfg.Service.Kind})
	logg.Info(ctx, "starting cron worker")

	go func() {
		if err := metrics.Serve(ctx, cfg.App.MetricsAddr, prometheus.DefaultGatherer, logg); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func fatalIf(ctx context.Context, logg *logger.Logger, action string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to "+action, err)
	os.Exit(1)
}

func closeQuietly(logg *logger.Logger, resource string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+resource, err)
	}
}
