// Package availsync reconciles the per-date calendar with reservation state.
// Reconciliation only tightens availability: dates are marked reserved for
// confirmed stays, and nothing is ever freed.
package availsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"go.uber.org/multierr"
)

type lockSweeper interface {
	DeleteExpired(ctx context.Context, unitID *uuid.UUID, now time.Time) (int64, error)
}

type reservationReader interface {
	ListByUnitAndStatus(ctx context.Context, unitID uuid.UUID, statuses ...enums.ReservationStatus) ([]models.Reservation, error)
	ListUnitIDsWithStatus(ctx context.Context, statuses ...enums.ReservationStatus) ([]uuid.UUID, error)
}

type availabilityUpdater interface {
	UpdateAvailability(ctx context.Context, updates []availability.DateUpdate) (*availability.UpdateResult, error)
}

type Service interface {
	SynchronizeAvailability(ctx context.Context, unitID uuid.UUID) (*Summary, error)
	SweepExpiredLocks(ctx context.Context) (int64, error)
	SynchronizeAll(ctx context.Context) (*Summary, error)
}

// Summary counts what one reconciliation pass touched.
type Summary struct {
	Units          int   `json:"units"`
	ExpiredLocks   int64 `json:"expired_locks"`
	Reservations   int   `json:"reservations"`
	DatesReserved  int   `json:"dates_reserved"`
	FailedDates    int   `json:"failed_dates"`
	FailedUnitSync int   `json:"failed_units"`
}

func (s *Summary) add(other *Summary) {
	if other == nil {
		return
	}
	s.Units += other.Units
	s.ExpiredLocks += other.ExpiredLocks
	s.Reservations += other.Reservations
	s.DatesReserved += other.DatesReserved
	s.FailedDates += other.FailedDates
}

type ServiceParams struct {
	Locks        lockSweeper
	Reservations reservationReader
	Availability availabilityUpdater
	Logger       *logger.Logger
	Metrics      *metrics.AvailabilityMetrics
	Now          func() time.Time
}

type service struct {
	locks        lockSweeper
	reservations reservationReader
	availability availabilityUpdater
	logg         *logger.Logger
	metrics      *metrics.AvailabilityMetrics
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Locks == nil {
		return nil, fmt.Errorf("lock repository required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Availability == nil {
		return nil, fmt.Errorf("availability service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		locks:        params.Locks,
		reservations: params.Reservations,
		availability: params.Availability,
		logg:         params.Logger,
		metrics:      params.Metrics,
		now:          now,
	}, nil
}

func (s *service) SynchronizeAvailability(ctx context.Context, unitID uuid.UUID) (*Summary, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	ctx = s.logg.WithUnitID(ctx, unitID.String())
	summary := &Summary{Units: 1}

	expired, err := s.locks.DeleteExpired(ctx, &unitID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired locks")
	}
	summary.ExpiredLocks = expired
	s.metrics.AddLocks(metrics.LockOutcomeExpired, expired)

	reservations, err := s.reservations.ListByUnitAndStatus(ctx, unitID, enums.ReservationStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmed reservations")
	}
	summary.Reservations = len(reservations)

	updates := reservedDates(unitID, reservations)
	if len(updates) == 0 {
		s.logg.Debug(ctx, "availability already in sync")
		return summary, nil
	}

	result, err := s.availability.UpdateAvailability(ctx, updates)
	if result != nil {
		summary.DatesReserved = len(result.Updated)
		summary.FailedDates = len(result.Failed)
		s.metrics.AddSyncedDates(len(result.Updated))
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"expired_locks":  summary.ExpiredLocks,
		"reservations":   summary.Reservations,
		"dates_reserved": summary.DatesReserved,
		"failed_dates":   summary.FailedDates,
	})
	if err != nil {
		s.logg.Error(logCtx, "availability sync incomplete", err)
		return summary, err
	}
	s.logg.Info(logCtx, "availability synchronized")
	return summary, nil
}

// reservedDates expands reservations into per-date writes, one per distinct date.
func reservedDates(unitID uuid.UUID, reservations []models.Reservation) []availability.DateUpdate {
	seen := map[string]struct{}{}
	updates := []availability.DateUpdate{}
	for _, reservation := range reservations {
		rng := daterange.Range{CheckIn: daterange.Day(reservation.CheckIn), CheckOut: daterange.Day(reservation.CheckOut)}
		for _, date := range rng.Dates() {
			key := daterange.Format(date)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			reason := availability.ReservedReason
			updates = append(updates, availability.DateUpdate{
				UnitID:        unitID,
				Date:          date,
				IsAvailable:   false,
				BlockedReason: &reason,
			})
		}
	}
	return updates
}

func (s *service) SweepExpiredLocks(ctx context.Context) (int64, error) {
	deleted, err := s.locks.DeleteExpired(ctx, nil, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sweep expired locks")
	}
	s.metrics.AddLocks(metrics.LockOutcomeExpired, deleted)
	return deleted, nil
}

// SynchronizeAll runs the per-unit pass for every unit holding a confirmed
// reservation. One unit failing does not stop the others.
func (s *service) SynchronizeAll(ctx context.Context) (*Summary, error) {
	unitIDs, err := s.reservations.ListUnitIDsWithStatus(ctx, enums.ReservationStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units with confirmed reservations")
	}
	total := &Summary{}
	var errs error
	for _, unitID := range unitIDs {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		summary, err := s.SynchronizeAvailability(ctx, unitID)
		total.add(summary)
		if err != nil {
			total.FailedUnitSync++
			errs = multierr.Append(errs, fmt.Errorf("unit %s: %w", unitID, err))
		}
	}
	if errs != nil {
		return total, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "availability sync failed for some units")
	}
	return total, nil
}
