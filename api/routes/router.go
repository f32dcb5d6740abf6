package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loftstay/loftstay-backend/api/controllers"
	"github.com/loftstay/loftstay-backend/api/middleware"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/pricing"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

// redisStore is the slice of the redis client the HTTP layer needs.
type redisStore interface {
	middleware.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient redisStore,
	gatherer prometheus.Gatherer,
	unitService units.Service,
	availabilityService availability.Service,
	pricingService pricing.Service,
	lockService locks.Service,
	syncService availsync.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	lockPolicy := middleware.NewRateLimitPolicy(
		"locks",
		cfg.RateLimit.LockWindow,
		cfg.RateLimit.LockIPLimit,
		cfg.RateLimit.LockUserLimit,
	)

	idempotency := middleware.Idempotency(redisClient, logg, cfg.Availability.LockTTL)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisClient,
		}))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public/v1/units/{unitId}", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Get("/availability", controllers.UnitAvailability(availabilityService, logg))
		r.Get("/pricing", controllers.UnitPricing(pricingService, logg))
		r.Get("/calendar", controllers.UnitCalendar(availabilityService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(idempotency)

		r.Route("/locks", func(r chi.Router) {
			r.With(middleware.RateLimit(lockPolicy, redisClient, logg)).Post("/", controllers.CreateLock(lockService, logg))
			r.Get("/{lockId}", controllers.GetLock(lockService, logg))
			r.Delete("/{lockId}", controllers.ReleaseLock(lockService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))
		r.Use(idempotency)

		r.Route("/units", func(r chi.Router) {
			r.Get("/", controllers.AdminListUnits(unitService, logg))
			r.Post("/", controllers.AdminCreateUnit(unitService, logg))
			r.Get("/{unitId}", controllers.AdminGetUnit(unitService, logg))
			r.Patch("/{unitId}", controllers.AdminUpdateUnit(unitService, logg))
			r.Put("/{unitId}/availability", controllers.AdminUpdateAvailability(availabilityService, logg))
			r.Post("/{unitId}/sync", controllers.AdminSyncUnit(syncService, logg))
		})
		r.Post("/locks/sweep", controllers.AdminSweepLocks(syncService, logg))
	})

	return r
}
