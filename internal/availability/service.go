package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const defaultMaxCalendarDays = 366

// Service answers availability questions for a unit and edits its per-date calendar.
type Service interface {
	CheckAvailability(ctx context.Context, input CheckInput) (*CheckResult, error)
	// CheckWithTx runs the same check on tx and holds the unit row lock
	// (postgres) until tx ends.
	CheckWithTx(ctx context.Context, tx *gorm.DB, input CheckInput) (*CheckResult, error)
	GetAvailabilityCalendar(ctx context.Context, unitID uuid.UUID, from, to string) (*Calendar, error)
	UpdateAvailability(ctx context.Context, updates []DateUpdate) (*UpdateResult, error)
}

type ServiceParams struct {
	Units           units.Repository
	Repo            Repository
	Validator       daterange.Validator
	Metrics         *metrics.AvailabilityMetrics
	MaxCalendarDays int
	Now             func() time.Time
}

type service struct {
	units           units.Repository
	repo            Repository
	validator       daterange.Validator
	metrics         *metrics.AvailabilityMetrics
	maxCalendarDays int
	now             func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Units == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "units repository required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "availability repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	validator := params.Validator
	if validator.Now == nil {
		validator.Now = now
	}
	maxDays := params.MaxCalendarDays
	if maxDays <= 0 {
		maxDays = defaultMaxCalendarDays
	}
	return &service{
		units:           params.Units,
		repo:            params.Repo,
		validator:       validator,
		metrics:         params.Metrics,
		maxCalendarDays: maxDays,
		now:             now,
	}, nil
}

func (s *service) CheckAvailability(ctx context.Context, input CheckInput) (*CheckResult, error) {
	result, err := s.check(ctx, s.units, s.repo, input, false)
	s.recordCheck(result, err)
	return result, err
}

func (s *service) CheckWithTx(ctx context.Context, tx *gorm.DB, input CheckInput) (*CheckResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	result, err := s.check(ctx, s.units.WithTx(tx), s.repo.WithTx(tx), input, true)
	s.recordCheck(result, err)
	return result, err
}

func (s *service) check(ctx context.Context, unitRepo units.Repository, repo Repository, input CheckInput, forUpdate bool) (*CheckResult, error) {
	if input.UnitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	rng, err := s.validator.Parse(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}

	unit, err := loadUnit(ctx, unitRepo, input.UnitID, forUpdate)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		UnitID:           unit.ID,
		CheckIn:          daterange.Format(rng.CheckIn),
		CheckOut:         daterange.Format(rng.CheckOut),
		Nights:           rng.Nights(),
		UnavailableDates: []string{},
		MinimumStay:      unit.MinimumStay,
		MaximumStay:      unit.MaximumStay,
		Restrictions:     []Restriction{},
		Stay:             rng,
	}

	if !unit.Status.Bookable() {
		result.Restrictions = append(result.Restrictions, Restriction{
			Type:    enums.RestrictionTypeBlockedDates,
			Message: fmt.Sprintf("unit is %s", unit.Status),
		})
		return result, nil
	}

	nights := rng.Nights()
	if nights < unit.MinimumStay {
		minimum := unit.MinimumStay
		result.Restrictions = append(result.Restrictions, Restriction{
			Type:    enums.RestrictionTypeMinimumStay,
			Message: fmt.Sprintf("minimum stay is %d nights", minimum),
			Value:   &minimum,
		})
	}
	if unit.MaximumStay != nil && nights > *unit.MaximumStay {
		maximum := *unit.MaximumStay
		result.Restrictions = append(result.Restrictions, Restriction{
			Type:    enums.RestrictionTypeMaximumStay,
			Message: fmt.Sprintf("maximum stay is %d nights", maximum),
			Value:   &maximum,
		})
	}

	unavailable := map[string]struct{}{}

	blocked, err := repo.ListBlockedDates(ctx, unit.ID, rng)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blocked dates")
	}
	for _, row := range blocked {
		unavailable[daterange.Format(row.Date)] = struct{}{}
	}

	reservations, err := repo.ListOverlappingReservations(ctx, unit.ID, rng)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load overlapping reservations")
	}
	if len(reservations) > 0 {
		result.ReservationConflict = true
		for _, reservation := range reservations {
			markOverlap(unavailable, rng, reservation.CheckIn, reservation.CheckOut)
		}
	}

	locks, err := repo.ListActiveLocks(ctx, activeLockParams{
		UnitID:        unit.ID,
		Range:         rng,
		Now:           s.now().UTC(),
		ExcludeUserID: input.UserID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation locks")
	}
	if len(locks) > 0 {
		result.LockConflict = true
		for _, lock := range locks {
			markOverlap(unavailable, rng, lock.CheckIn, lock.CheckOut)
		}
	}

	for date := range unavailable {
		result.UnavailableDates = append(result.UnavailableDates, date)
	}
	sort.Strings(result.UnavailableDates)

	result.IsAvailable = len(result.Restrictions) == 0 &&
		len(result.UnavailableDates) == 0 &&
		!result.ReservationConflict &&
		!result.LockConflict
	return result, nil
}

// markOverlap records the requested dates that fall inside [checkIn, checkOut).
func markOverlap(dates map[string]struct{}, requested daterange.Range, checkIn, checkOut time.Time) {
	other := daterange.Range{CheckIn: daterange.Day(checkIn), CheckOut: daterange.Day(checkOut)}
	for _, day := range requested.Dates() {
		if other.ContainsDate(day) {
			dates[daterange.Format(day)] = struct{}{}
		}
	}
}

func loadUnit(ctx context.Context, repo units.Repository, unitID uuid.UUID, forUpdate bool) (*models.Unit, error) {
	var (
		unit *models.Unit
		err  error
	)
	if forUpdate {
		unit, err = repo.FindByIDForUpdate(ctx, unitID)
	} else {
		unit, err = repo.FindByID(ctx, unitID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	return unit, nil
}

func (s *service) recordCheck(result *CheckResult, err error) {
	switch {
	case err != nil:
		if pkgerrors.CodeOf(err) == pkgerrors.CodeDependency {
			s.metrics.IncCheck(metrics.CheckResultError)
		}
	case result.IsAvailable:
		s.metrics.IncCheck(metrics.CheckResultAvailable)
	default:
		s.metrics.IncCheck(metrics.CheckResultUnavailable)
	}
}

func (s *service) GetAvailabilityCalendar(ctx context.Context, unitID uuid.UUID, from, to string) (*Calendar, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	rng, err := daterange.ParseSpan(from, to)
	if err != nil {
		return nil, err
	}
	if rng.Nights() > s.maxCalendarDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calendar span too long").
			WithDetails(map[string]any{"max_days": s.maxCalendarDays, "requested_days": rng.Nights()})
	}

	unit, err := loadUnit(ctx, s.units, unitID, false)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListDateRecords(ctx, unitID, rng)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load availability records")
	}
	byDate := make(map[string]models.UnitAvailability, len(rows))
	for _, row := range rows {
		byDate[daterange.Format(row.Date)] = row
	}

	days := make([]CalendarDay, 0, rng.Nights())
	for _, date := range rng.Dates() {
		key := daterange.Format(date)
		day := CalendarDay{Date: key, IsAvailable: true, Price: unit.PricePerNight}
		if row, ok := byDate[key]; ok {
			day.IsAvailable = row.IsAvailable
			day.BlockedReason = row.BlockedReason
			if row.PriceOverride != nil {
				override := *row.PriceOverride
				day.PriceOverride = &override
				day.Price = override
			}
		}
		days = append(days, day)
	}

	return &Calendar{
		UnitID: unitID,
		From:   daterange.Format(rng.CheckIn),
		To:     daterange.Format(rng.CheckOut),
		Days:   days,
	}, nil
}

// UpdateAvailability writes every row independently. When some rows fail, the
// returned result still lists the successful writes and the error combines one
// *UpdateFailedError per failed date (see FailedUpdates). A batch naming an
// unknown unit fails with CodeNotFound before anything is written.
func (s *service) UpdateAvailability(ctx context.Context, updates []DateUpdate) (*UpdateResult, error) {
	if err := validateUpdates(updates); err != nil {
		return nil, err
	}
	if err := s.requireUnits(ctx, updates); err != nil {
		return nil, err
	}

	result := &UpdateResult{Updated: []UpdatedDate{}, Failed: []FailedDate{}}
	var errs error
	for _, update := range updates {
		date := daterange.Day(update.Date)
		record := &models.UnitAvailability{
			UnitID:        update.UnitID,
			Date:          date,
			IsAvailable:   update.IsAvailable,
			BlockedReason: update.BlockedReason,
			PriceOverride: update.PriceOverride,
		}
		setPrice := update.PriceOverride != nil || update.ClearPriceOverride
		if err := s.repo.UpsertDate(ctx, record, setPrice); err != nil {
			s.metrics.IncDateWrite(false)
			failed := &UpdateFailedError{UnitID: update.UnitID, Date: date, Err: err}
			errs = multierr.Append(errs, failed)
			result.Failed = append(result.Failed, FailedDate{
				UnitID: update.UnitID,
				Date:   daterange.Format(date),
				Error:  err.Error(),
			})
			continue
		}
		s.metrics.IncDateWrite(true)
		result.Updated = append(result.Updated, UpdatedDate{UnitID: update.UnitID, Date: daterange.Format(date)})
	}

	if errs != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "availability update failed for some dates").
			WithDetails(map[string]any{"failed": result.Failed})
	}
	return result, nil
}

func (s *service) requireUnits(ctx context.Context, updates []DateUpdate) error {
	seen := make(map[uuid.UUID]struct{}, 1)
	for _, update := range updates {
		if _, ok := seen[update.UnitID]; ok {
			continue
		}
		seen[update.UnitID] = struct{}{}
		if _, err := loadUnit(ctx, s.units, update.UnitID, false); err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return typed.WithDetails(map[string]any{"unit_id": update.UnitID.String()})
			}
			return err
		}
	}
	return nil
}

func validateUpdates(updates []DateUpdate) error {
	for i, update := range updates {
		fields := map[string]any{"index": i}
		switch {
		case update.UnitID == uuid.Nil:
			fields["field"] = "unit_id"
		case update.Date.IsZero():
			fields["field"] = "date"
		case update.PriceOverride != nil && update.PriceOverride.IsNegative():
			fields["field"] = "price_override"
		case update.PriceOverride != nil && update.ClearPriceOverride:
			fields["field"] = "clear_price_override"
		default:
			continue
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid availability update").WithDetails(fields)
	}
	return nil
}
