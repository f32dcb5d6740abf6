package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/loftstay/loftstay-backend/api/routes"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/pricing"
	"github.com/loftstay/loftstay-backend/internal/reservations"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"github.com/loftstay/loftstay-backend/pkg/migrate"
	"github.com/loftstay/loftstay-backend/pkg/redis"
)

// shutdownGrace bounds how long in-flight requests get after SIGTERM.
const shutdownGrace = 20 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	availabilityMetrics := metrics.NewAvailabilityMetrics(registry)

	validator := daterange.NewValidator(cfg.Availability.BookingHorizonMonths, nil)

	unitsRepo := units.NewRepository(dbClient.DB())
	availabilityRepo := availability.NewRepository(dbClient.DB())
	locksRepo := locks.NewRepository(dbClient.DB())

	unitService, err := units.NewService(unitsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create units service", err)
		os.Exit(1)
	}

	availabilityService, err := availability.NewService(availability.ServiceParams{
		Units:           unitsRepo,
		Repo:            availabilityRepo,
		Validator:       validator,
		Metrics:         availabilityMetrics,
		MaxCalendarDays: cfg.Availability.MaxCalendarDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create availability service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Units:          unitsRepo,
		Overrides:      availabilityRepo,
		Validator:      validator,
		ServiceFeeRate: cfg.Availability.FeeRate(),
		Currency:       enums.Currency(cfg.Availability.Currency),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	lockService, err := locks.NewService(locks.ServiceParams{
		Repo:         locksRepo,
		Tx:           dbClient,
		Availability: availabilityService,
		TTL:          cfg.Availability.LockTTL,
		Metrics:      availabilityMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create locks service", err)
		os.Exit(1)
	}

	syncService, err := availsync.NewService(availsync.ServiceParams{
		Locks:        locksRepo,
		Reservations: reservations.NewRepository(dbClient.DB()),
		Availability: availabilityService,
		Logger:       logg,
		Metrics:      availabilityMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create availability sync service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			unitService,
			availabilityService,
			pricingService,
			lockService,
			syncService,
		),
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown incomplete", err)
		}
	}
}
