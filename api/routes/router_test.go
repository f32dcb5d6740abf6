package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/locks"
	pkgAuth "github.com/loftstay/loftstay-backend/pkg/auth"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type memoryRedis struct {
	stubPinger
	data   map[string]string
	counts map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string {
	return "ls:idempotency:" + scope + ":" + id
}

func (m *memoryRedis) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.counts[scope]++
	return m.counts[scope] <= limit, m.counts[scope], nil
}

type stubAvailability struct{}

func (stubAvailability) CheckAvailability(_ context.Context, input availability.CheckInput) (*availability.CheckResult, error) {
	return &availability.CheckResult{UnitID: input.UnitID, IsAvailable: true, UnavailableDates: []string{}, Restrictions: []availability.Restriction{}}, nil
}

func (s stubAvailability) CheckWithTx(ctx context.Context, _ *gorm.DB, input availability.CheckInput) (*availability.CheckResult, error) {
	return s.CheckAvailability(ctx, input)
}

func (stubAvailability) GetAvailabilityCalendar(_ context.Context, unitID uuid.UUID, from, to string) (*availability.Calendar, error) {
	return &availability.Calendar{UnitID: unitID, From: from, To: to, Days: []availability.CalendarDay{}}, nil
}

func (stubAvailability) UpdateAvailability(context.Context, []availability.DateUpdate) (*availability.UpdateResult, error) {
	return &availability.UpdateResult{}, nil
}

type countingLocks struct {
	created int
}

func (c *countingLocks) LockReservation(_ context.Context, input locks.LockInput) (*locks.LockResult, error) {
	c.created++
	return &locks.LockResult{LockID: uuid.New(), UnitID: input.UnitID, CheckIn: input.CheckIn, CheckOut: input.CheckOut}, nil
}

func (c *countingLocks) ReleaseReservationLock(context.Context, uuid.UUID) error { return nil }

func (c *countingLocks) GetLock(context.Context, uuid.UUID) (*models.ReservationLock, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "loftstay", ExpirationMinutes: 10},
		RateLimit: config.RateLimitConfig{
			LockWindow:    time.Minute,
			LockIPLimit:   100,
			LockUserLimit: 2,
		},
	}
}

func bearer(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func newTestRouter(cfg *config.Config, lockSvc locks.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	metrics.NewAvailabilityMetrics(reg).IncCheck(metrics.CheckResultAvailable)
	return NewRouter(cfg, logg, stubPinger{}, newMemoryRedis(), reg, nil, stubAvailability{}, nil, lockSvc, nil)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(testConfig(), &countingLocks{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "availability_checks_total") {
		t.Fatalf("metrics: unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouterPublicRoutesAllowAnonymous(t *testing.T) {
	router := newTestRouter(testConfig(), &countingLocks{})
	unitID := uuid.NewString()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/v1/units/"+unitID+"/availability?check_in=2026-11-01&check_out=2026-11-03", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header")
	}
}

func TestRouterLockRoutesRequireAuthAndIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	lockSvc := &countingLocks{}
	router := newTestRouter(cfg, lockSvc)
	body := `{"unit_id":"` + uuid.NewString() + `","check_in":"2026-11-01","check_out":"2026-11-03"}`

	anon := httptest.NewRecorder()
	router.ServeHTTP(anon, httptest.NewRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body)))
	if anon.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", anon.Code)
	}

	token := bearer(t, cfg, enums.ActorRoleGuest)
	noKey := httptest.NewRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body))
	noKey.Header.Set("Authorization", token)
	noKeyRec := httptest.NewRecorder()
	router.ServeHTTP(noKeyRec, noKey)
	if noKeyRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", noKeyRec.Code)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body))
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "checkout-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}
	if lockSvc.created != 1 {
		t.Fatalf("expected replayed response, service called %d times", lockSvc.created)
	}
}

func TestRouterAdminRoutesRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &countingLocks{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/locks/sweep", nil)
	req.Header.Set("Authorization", bearer(t, cfg, enums.ActorRoleGuest))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
