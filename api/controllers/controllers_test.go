package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/internal/pricing"
	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestUnitAvailabilityPassesCallerToService(t *testing.T) {
	unitID := uuid.New()
	userID := uuid.New()
	svc := &fakeAvailability{checkResult: &availability.CheckResult{UnitID: unitID, IsAvailable: true, Nights: 3}}

	req := newRequest(http.MethodGet, "/?check_in=2026-11-01&check_out=2026-11-04", nil, map[string]string{"unitId": unitID.String()})
	rec := httptest.NewRecorder()
	UnitAvailability(svc, testLogger())(rec, asUser(req, userID, "guest"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCheck.UnitID != unitID || svc.lastCheck.CheckIn != "2026-11-01" || svc.lastCheck.CheckOut != "2026-11-04" {
		t.Fatalf("unexpected input %+v", svc.lastCheck)
	}
	if svc.lastCheck.UserID == nil || *svc.lastCheck.UserID != userID {
		t.Fatalf("expected caller id passed through, got %v", svc.lastCheck.UserID)
	}
	var result availability.CheckResult
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.IsAvailable || result.Nights != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestUnitAvailabilityRequiresDates(t *testing.T) {
	svc := &fakeAvailability{}
	req := newRequest(http.MethodGet, "/?check_in=2026-11-01", nil, map[string]string{"unitId": uuid.NewString()})
	rec := httptest.NewRecorder()
	UnitAvailability(svc, nil)(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnitAvailabilityMapsNotFound(t *testing.T) {
	svc := &fakeAvailability{checkErr: pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")}
	req := newRequest(http.MethodGet, "/?check_in=2026-11-01&check_out=2026-11-02", nil, map[string]string{"unitId": uuid.NewString()})
	rec := httptest.NewRecorder()
	UnitAvailability(svc, nil)(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUnitCalendar(t *testing.T) {
	unitID := uuid.New()
	svc := &fakeAvailability{calendar: &availability.Calendar{
		UnitID: unitID,
		From:   "2026-11-01",
		To:     "2026-11-03",
		Days: []availability.CalendarDay{
			{Date: "2026-11-01", IsAvailable: true, Price: decimal.RequireFromString("100")},
			{Date: "2026-11-02", IsAvailable: false, Price: decimal.RequireFromString("100")},
		},
	}}
	req := newRequest(http.MethodGet, "/?from=2026-11-01&to=2026-11-03", nil, map[string]string{"unitId": unitID.String()})
	rec := httptest.NewRecorder()
	UnitCalendar(svc, nil)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	missing := httptest.NewRecorder()
	UnitCalendar(svc, nil)(missing, newRequest(http.MethodGet, "/?from=2026-11-01", nil, map[string]string{"unitId": unitID.String()}))
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without to, got %d", missing.Code)
	}
}

func TestAdminUpdateAvailabilityBuildsUpdates(t *testing.T) {
	unitID := uuid.New()
	svc := &fakeAvailability{updateRes: &availability.UpdateResult{
		Updated: []availability.UpdatedDate{{UnitID: unitID, Date: "2026-12-24"}, {UnitID: unitID, Date: "2026-12-25"}},
		Failed:  []availability.FailedDate{},
	}}
	body := `{"dates":[
		{"date":"2026-12-24","is_available":true,"price_override":"180.00"},
		{"date":"2026-12-25","is_available":false,"blocked_reason":"  owner stay  ","clear_price_override":true}
	]}`
	req := newRequest(http.MethodPut, "/", strings.NewReader(body), map[string]string{"unitId": unitID.String()})
	rec := httptest.NewRecorder()
	AdminUpdateAvailability(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(svc.updates))
	}
	first, second := svc.updates[0], svc.updates[1]
	if first.UnitID != unitID || first.PriceOverride == nil || !first.PriceOverride.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("unexpected first update %+v", first)
	}
	if second.IsAvailable || second.BlockedReason == nil || *second.BlockedReason != "owner stay" || !second.ClearPriceOverride {
		t.Fatalf("unexpected second update %+v", second)
	}
	if got := second.Date.Format("2006-01-02"); got != "2026-12-25" {
		t.Fatalf("unexpected date %s", got)
	}
}

func TestAdminUpdateAvailabilityPartialFailure(t *testing.T) {
	unitID := uuid.New()
	result := &availability.UpdateResult{
		Updated: []availability.UpdatedDate{{UnitID: unitID, Date: "2026-12-24"}},
		Failed:  []availability.FailedDate{{UnitID: unitID, Date: "2026-12-25", Error: "deadlock"}},
	}
	svc := &fakeAvailability{
		updateRes: result,
		updateErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("deadlock"), "availability update failed for some dates"),
	}
	body := `{"dates":[{"date":"2026-12-24","is_available":true},{"date":"2026-12-25","is_available":true}]}`
	rec := httptest.NewRecorder()
	AdminUpdateAvailability(svc, testLogger())(rec, newRequest(http.MethodPut, "/", strings.NewReader(body), map[string]string{"unitId": unitID.String()}))

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207, got %d", rec.Code)
	}
	var got availability.UpdateResult
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Failed) != 1 || got.Failed[0].Date != "2026-12-25" {
		t.Fatalf("unexpected failed list %+v", got.Failed)
	}
}

func TestAdminUpdateAvailabilityTotalFailure(t *testing.T) {
	svc := &fakeAvailability{
		updateRes: &availability.UpdateResult{Failed: []availability.FailedDate{{Date: "2026-12-24"}}},
		updateErr: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "availability update failed for some dates"),
	}
	body := `{"dates":[{"date":"2026-12-24","is_available":true}]}`
	rec := httptest.NewRecorder()
	AdminUpdateAvailability(svc, nil)(rec, newRequest(http.MethodPut, "/", strings.NewReader(body), map[string]string{"unitId": uuid.NewString()}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAdminUpdateAvailabilityUnknownUnit(t *testing.T) {
	svc := &fakeAvailability{updateErr: pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")}
	body := `{"dates":[{"date":"2026-12-24","is_available":true}]}`
	rec := httptest.NewRecorder()
	AdminUpdateAvailability(svc, nil)(rec, newRequest(http.MethodPut, "/", strings.NewReader(body), map[string]string{"unitId": uuid.NewString()}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminUpdateAvailabilityRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":     `{"dates":[]}`,
		"bad date":  `{"dates":[{"date":"24/12/2026","is_available":true}]}`,
		"bad price": `{"dates":[{"date":"2026-12-24","is_available":true,"price_override":"cheap"}]}`,
		"missing":   `{"dates":[{"date":"2026-12-24"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeAvailability{}
			rec := httptest.NewRecorder()
			AdminUpdateAvailability(svc, nil)(rec, newRequest(http.MethodPut, "/", strings.NewReader(body), map[string]string{"unitId": uuid.NewString()}))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if svc.updates != nil {
				t.Fatal("service must not be called")
			}
		})
	}
}

func TestUnitPricingRendersTwoDecimals(t *testing.T) {
	svc := &fakePricing{breakdown: &pricing.Breakdown{
		Nights:        4,
		Subtotal:      decimal.RequireFromString("400"),
		ServiceFee:    decimal.RequireFromString("48"),
		CleaningFee:   decimal.RequireFromString("50"),
		TaxableAmount: decimal.RequireFromString("498"),
		Taxes:         decimal.RequireFromString("94.62"),
		Total:         decimal.RequireFromString("592.62"),
		Currency:      enums.CurrencyEUR,
	}}
	req := newRequest(http.MethodGet, "/?check_in=2026-11-01&check_out=2026-11-05", nil, map[string]string{"unitId": uuid.NewString()})
	rec := httptest.NewRecorder()
	UnitPricing(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var quote pricing.DisplayBreakdown
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &quote); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if quote.Subtotal != "400.00" || quote.Total != "592.62" || quote.Currency != "EUR" {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestUnitPricingUnitNotFound(t *testing.T) {
	svc := &fakePricing{err: pkgerrors.Wrap(pkgerrors.CodeNotFound, pricing.ErrUnitNotFound, "unit not found")}
	req := newRequest(http.MethodGet, "/?check_in=2026-11-01&check_out=2026-11-05", nil, map[string]string{"unitId": uuid.NewString()})
	rec := httptest.NewRecorder()
	UnitPricing(svc, nil)(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateLock(t *testing.T) {
	unitID := uuid.New()
	userID := uuid.New()
	expires := time.Date(2026, 10, 20, 9, 45, 0, 0, time.UTC)
	svc := &fakeLocks{lockResult: &locks.LockResult{LockID: uuid.New(), UnitID: unitID, CheckIn: "2026-11-01", CheckOut: "2026-11-03", ExpiresAt: expires}}

	body := `{"unit_id":"` + unitID.String() + `","check_in":"2026-11-01","check_out":"2026-11-03"}`
	req := asUser(newRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body), nil), userID, "guest")
	rec := httptest.NewRecorder()
	CreateLock(svc, testLogger())(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lockInput.UserID == nil || *svc.lockInput.UserID != userID {
		t.Fatalf("expected lock held for caller, got %v", svc.lockInput.UserID)
	}
}

func TestCreateLockConflictCarriesDetails(t *testing.T) {
	details := locks.ConflictDetails{UnavailableDates: []string{"2026-11-02"}, Restrictions: []availability.Restriction{}, LockConflict: true}
	svc := &fakeLocks{lockErr: pkgerrors.Wrap(pkgerrors.CodeConflict, locks.ErrDatesUnavailable, "dates unavailable").WithDetails(details)}

	body := `{"unit_id":"` + uuid.NewString() + `","check_in":"2026-11-01","check_out":"2026-11-03"}`
	rec := httptest.NewRecorder()
	CreateLock(svc, nil)(rec, newRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body), nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var got locks.ConflictDetails
	if err := json.Unmarshal(decodeEnvelope(t, rec).Error.Details, &got); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if !got.LockConflict || len(got.UnavailableDates) != 1 {
		t.Fatalf("unexpected details %+v", got)
	}
}

func TestCreateLockRejectsBadUnitID(t *testing.T) {
	svc := &fakeLocks{}
	body := `{"unit_id":"loft-4","check_in":"2026-11-01","check_out":"2026-11-03"}`
	rec := httptest.NewRecorder()
	CreateLock(svc, nil)(rec, newRequest(http.MethodPost, "/api/v1/locks", strings.NewReader(body), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetLockOwnership(t *testing.T) {
	defer pinnedNow(time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC))()
	owner := uuid.New()
	lock := &models.ReservationLock{
		ID:        uuid.New(),
		UnitID:    uuid.New(),
		UserID:    &owner,
		CheckIn:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 10, 20, 9, 45, 0, 0, time.UTC),
	}
	svc := &fakeLocks{stored: lock}
	params := map[string]string{"lockId": lock.ID.String()}

	rec := httptest.NewRecorder()
	GetLock(svc, nil)(rec, asUser(newRequest(http.MethodGet, "/", nil, params), owner, "guest"))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rec.Code)
	}
	var got lockResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Active || got.CheckIn != "2026-11-01" || got.ExpiresAt != "2026-10-20T09:45:00Z" {
		t.Fatalf("unexpected lock %+v", got)
	}

	stranger := httptest.NewRecorder()
	GetLock(svc, nil)(stranger, asUser(newRequest(http.MethodGet, "/", nil, params), uuid.New(), "guest"))
	if stranger.Code != http.StatusNotFound {
		t.Fatalf("stranger: expected 404, got %d", stranger.Code)
	}

	admin := httptest.NewRecorder()
	GetLock(svc, nil)(admin, asUser(newRequest(http.MethodGet, "/", nil, params), uuid.New(), "admin"))
	if admin.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d", admin.Code)
	}
}

func TestReleaseLock(t *testing.T) {
	owner := uuid.New()
	lock := &models.ReservationLock{ID: uuid.New(), UnitID: uuid.New(), UserID: &owner}
	svc := &fakeLocks{stored: lock}
	params := map[string]string{"lockId": lock.ID.String()}

	rec := httptest.NewRecorder()
	ReleaseLock(svc, nil)(rec, asUser(newRequest(http.MethodDelete, "/", nil, params), owner, "guest"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(svc.released) != 1 || svc.released[0] != lock.ID {
		t.Fatalf("unexpected releases %v", svc.released)
	}

	svc.releaseErr = pkgerrors.Wrap(pkgerrors.CodeDependency, locks.ErrReleaseFailed, "release lock")
	failed := httptest.NewRecorder()
	ReleaseLock(svc, nil)(failed, asUser(newRequest(http.MethodDelete, "/", nil, params), owner, "guest"))
	if failed.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", failed.Code)
	}

	missing := &fakeLocks{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "reservation lock not found")}
	gone := httptest.NewRecorder()
	ReleaseLock(missing, nil)(gone, asUser(newRequest(http.MethodDelete, "/", nil, params), owner, "guest"))
	if gone.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", gone.Code)
	}
}

func TestAdminCreateUnit(t *testing.T) {
	svc := &fakeUnits{}
	body := `{"name":"  Loft 4  ","minimum_stay":2,"price_per_night":"100.00","cleaning_fee":"50","tax_rate":"0.19"}`
	rec := httptest.NewRecorder()
	AdminCreateUnit(svc, nil)(rec, newRequest(http.MethodPost, "/", strings.NewReader(body), nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.Name != "Loft 4" || !svc.created.TaxRate.Equal(decimal.RequireFromString("0.19")) {
		t.Fatalf("unexpected input %+v", svc.created)
	}
	var got unitResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PricePerNight != "100.00" || got.CleaningFee != "50.00" {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestAdminCreateUnitRejectsBadStatus(t *testing.T) {
	svc := &fakeUnits{}
	body := `{"name":"Loft 4","status":"demolished","price_per_night":"100"}`
	rec := httptest.NewRecorder()
	AdminCreateUnit(svc, nil)(rec, newRequest(http.MethodPost, "/", strings.NewReader(body), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.created != nil {
		t.Fatal("service must not be called")
	}
}

func TestAdminUpdateUnit(t *testing.T) {
	unit := &models.Unit{ID: uuid.New(), Name: "Loft 4", Status: enums.UnitStatusMaintenance, MinimumStay: 1, PricePerNight: decimal.RequireFromString("90")}
	svc := &fakeUnits{unit: unit}
	body := `{"status":"maintenance","price_per_night":"90","clear_maximum_stay":true}`
	rec := httptest.NewRecorder()
	AdminUpdateUnit(svc, nil)(rec, newRequest(http.MethodPatch, "/", strings.NewReader(body), map[string]string{"unitId": unit.ID.String()}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.updated.Status == nil || *svc.updated.Status != enums.UnitStatusMaintenance {
		t.Fatalf("unexpected status %v", svc.updated.Status)
	}
	if svc.updated.PricePerNight == nil || !svc.updated.PricePerNight.Equal(decimal.RequireFromString("90")) {
		t.Fatalf("unexpected price %v", svc.updated.PricePerNight)
	}
	if !svc.updated.ClearMaximumStay || svc.updated.CleaningFee != nil {
		t.Fatalf("unexpected update %+v", svc.updated)
	}
}

func TestAdminGetAndListUnits(t *testing.T) {
	unit := &models.Unit{ID: uuid.New(), Name: "Loft 4", Status: enums.UnitStatusAvailable, MinimumStay: 1}
	svc := &fakeUnits{unit: unit}

	rec := httptest.NewRecorder()
	AdminGetUnit(svc, nil)(rec, newRequest(http.MethodGet, "/", nil, map[string]string{"unitId": unit.ID.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	svc.nextCursor = "next-page"
	list := httptest.NewRecorder()
	AdminListUnits(svc, nil)(list, newRequest(http.MethodGet, "/?limit=10&cursor=abc", nil, nil))
	if list.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", list.Code)
	}
	var got unitListResponse
	if err := json.Unmarshal(decodeEnvelope(t, list).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Units) != 1 || got.Units[0].ID != unit.ID || got.NextCursor != "next-page" {
		t.Fatalf("unexpected list %+v", got)
	}
	if svc.listed == nil || svc.listed.Limit != 10 || svc.listed.Cursor != "abc" {
		t.Fatalf("unexpected list params %+v", svc.listed)
	}

	badLimit := httptest.NewRecorder()
	AdminListUnits(svc, nil)(badLimit, newRequest(http.MethodGet, "/?limit=0", nil, nil))
	if badLimit.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0, got %d", badLimit.Code)
	}
}

func TestAdminSyncEndpoints(t *testing.T) {
	svc := &fakeSync{summary: &availsync.Summary{Units: 1, DatesReserved: 4}, swept: 2}

	rec := httptest.NewRecorder()
	AdminSyncUnit(svc, nil)(rec, newRequest(http.MethodPost, "/", nil, map[string]string{"unitId": uuid.NewString()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("sync: expected 200, got %d", rec.Code)
	}
	var summary availsync.Summary
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.DatesReserved != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	sweep := httptest.NewRecorder()
	AdminSweepLocks(svc, nil)(sweep, newRequest(http.MethodPost, "/", nil, nil))
	if sweep.Code != http.StatusOK || !strings.Contains(sweep.Body.String(), `"deleted":2`) {
		t.Fatalf("sweep: unexpected %d %s", sweep.Code, sweep.Body.String())
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthEndpoints(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	live := httptest.NewRecorder()
	HealthLive(cfg)(live, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if live.Code != http.StatusOK || live.Header().Get("X-LoftStay-Env") != "test" {
		t.Fatalf("live: unexpected %d", live.Code)
	}

	ready := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": stubPinger{}})(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if ready.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", ready.Code)
	}

	notReady := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"redis": stubPinger{err: errors.New("refused")}})(notReady, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if notReady.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: expected 503, got %d", notReady.Code)
	}
}
