package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loftstay/loftstay-backend/api/middleware"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/pricing"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

// newRequest builds a request carrying chi URL params and optional caller identity.
func newRequest(method, target string, body io.Reader, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rc := chi.NewRouteContext()
	for key, value := range params {
		rc.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func asUser(req *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return req.WithContext(ctx)
}

type fakeAvailability struct {
	lastCheck   availability.CheckInput
	checkResult *availability.CheckResult
	checkErr    error
	calendar    *availability.Calendar
	calendarErr error
	updates     []availability.DateUpdate
	updateRes   *availability.UpdateResult
	updateErr   error
}

func (f *fakeAvailability) CheckAvailability(_ context.Context, input availability.CheckInput) (*availability.CheckResult, error) {
	f.lastCheck = input
	return f.checkResult, f.checkErr
}

func (f *fakeAvailability) CheckWithTx(ctx context.Context, _ *gorm.DB, input availability.CheckInput) (*availability.CheckResult, error) {
	return f.CheckAvailability(ctx, input)
}

func (f *fakeAvailability) GetAvailabilityCalendar(_ context.Context, unitID uuid.UUID, from, to string) (*availability.Calendar, error) {
	return f.calendar, f.calendarErr
}

func (f *fakeAvailability) UpdateAvailability(_ context.Context, updates []availability.DateUpdate) (*availability.UpdateResult, error) {
	f.updates = updates
	return f.updateRes, f.updateErr
}

type fakePricing struct {
	breakdown *pricing.Breakdown
	err       error
}

func (f *fakePricing) CalculatePricing(context.Context, uuid.UUID, string, string) (*pricing.Breakdown, error) {
	return f.breakdown, f.err
}

type fakeLocks struct {
	lockInput  locks.LockInput
	lockResult *locks.LockResult
	lockErr    error
	stored     *models.ReservationLock
	getErr     error
	released   []uuid.UUID
	releaseErr error
}

func (f *fakeLocks) LockReservation(_ context.Context, input locks.LockInput) (*locks.LockResult, error) {
	f.lockInput = input
	return f.lockResult, f.lockErr
}

func (f *fakeLocks) ReleaseReservationLock(_ context.Context, lockID uuid.UUID) error {
	f.released = append(f.released, lockID)
	return f.releaseErr
}

func (f *fakeLocks) GetLock(context.Context, uuid.UUID) (*models.ReservationLock, error) {
	return f.stored, f.getErr
}

type fakeUnits struct {
	created    *units.CreateInput
	updated    *units.UpdateInput
	listed     *pagination.Params
	unit       *models.Unit
	nextCursor string
	err        error
}

func (f *fakeUnits) Create(_ context.Context, input units.CreateInput) (*models.Unit, error) {
	f.created = &input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Unit{
		ID:            uuid.New(),
		Name:          input.Name,
		Status:        input.Status,
		MinimumStay:   input.MinimumStay,
		MaximumStay:   input.MaximumStay,
		PricePerNight: input.PricePerNight,
		CleaningFee:   input.CleaningFee,
		TaxRate:       input.TaxRate,
	}, nil
}

func (f *fakeUnits) Get(context.Context, uuid.UUID) (*models.Unit, error) {
	return f.unit, f.err
}

func (f *fakeUnits) Update(_ context.Context, _ uuid.UUID, input units.UpdateInput) (*models.Unit, error) {
	f.updated = &input
	return f.unit, f.err
}

func (f *fakeUnits) List(_ context.Context, params pagination.Params) (*units.ListResult, error) {
	f.listed = &params
	if f.err != nil {
		return nil, f.err
	}
	result := &units.ListResult{NextCursor: f.nextCursor}
	if f.unit != nil {
		result.Items = []models.Unit{*f.unit}
	}
	return result, nil
}

type fakeSync struct {
	summary *availsync.Summary
	swept   int64
	err     error
}

func (f *fakeSync) SynchronizeAvailability(context.Context, uuid.UUID) (*availsync.Summary, error) {
	return f.summary, f.err
}

func (f *fakeSync) SweepExpiredLocks(context.Context) (int64, error) {
	return f.swept, f.err
}

func (f *fakeSync) SynchronizeAll(context.Context) (*availsync.Summary, error) {
	return f.summary, f.err
}

func pinnedNow(t time.Time) func() {
	previous := timeNow
	timeNow = func() time.Time { return t }
	return func() { timeNow = previous }
}
