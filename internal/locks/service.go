package locks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/metrics"
	"gorm.io/gorm"
)

const DefaultTTL = 15 * time.Minute

var (
	// ErrDatesUnavailable is wrapped by the CONFLICT error returned when the
	// fresh availability check rejects the stay.
	ErrDatesUnavailable = errors.New("locks: dates unavailable")
	// ErrReleaseFailed is wrapped by every release failure.
	ErrReleaseFailed = errors.New("locks: release failed")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type availabilityChecker interface {
	CheckWithTx(ctx context.Context, tx *gorm.DB, input availability.CheckInput) (*availability.CheckResult, error)
}

// Service places and releases short-lived holds on a unit's dates.
type Service interface {
	LockReservation(ctx context.Context, input LockInput) (*LockResult, error)
	ReleaseReservationLock(ctx context.Context, lockID uuid.UUID) error
	GetLock(ctx context.Context, lockID uuid.UUID) (*models.ReservationLock, error)
}

type LockInput struct {
	UnitID   uuid.UUID
	CheckIn  string
	CheckOut string
	UserID   *uuid.UUID
}

type LockResult struct {
	LockID    uuid.UUID `json:"lock_id"`
	UnitID    uuid.UUID `json:"unit_id"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConflictDetails is attached to the CONFLICT error so callers can explain
// the rejection.
type ConflictDetails struct {
	UnavailableDates    []string                   `json:"unavailable_dates"`
	Restrictions        []availability.Restriction `json:"restrictions"`
	ReservationConflict bool                       `json:"reservation_conflict"`
	LockConflict        bool                       `json:"lock_conflict"`
}

type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Availability availabilityChecker
	TTL          time.Duration
	Metrics      *metrics.AvailabilityMetrics
	Now          func() time.Time
}

type service struct {
	repo         Repository
	tx           txRunner
	availability availabilityChecker
	ttl          time.Duration
	metrics      *metrics.AvailabilityMetrics
	now          func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locks repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Availability == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "availability checker required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		availability: params.Availability,
		ttl:          ttl,
		metrics:      params.Metrics,
		now:          now,
	}, nil
}

// LockReservation re-checks availability and inserts the lock in the same
// transaction. The check holds the unit row lock on postgres, so concurrent
// lock attempts on one unit run one after the other.
func (s *service) LockReservation(ctx context.Context, input LockInput) (*LockResult, error) {
	var result *LockResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		check, err := s.availability.CheckWithTx(ctx, tx, availability.CheckInput{
			UnitID:   input.UnitID,
			CheckIn:  input.CheckIn,
			CheckOut: input.CheckOut,
			UserID:   input.UserID,
		})
		if err != nil {
			return err
		}
		if !check.IsAvailable {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDatesUnavailable, "dates are not available").
				WithDetails(ConflictDetails{
					UnavailableDates:    check.UnavailableDates,
					Restrictions:        check.Restrictions,
					ReservationConflict: check.ReservationConflict,
					LockConflict:        check.LockConflict,
				})
		}

		lock := &models.ReservationLock{
			ID:        uuid.New(),
			UnitID:    check.UnitID,
			UserID:    input.UserID,
			CheckIn:   check.Stay.CheckIn,
			CheckOut:  check.Stay.CheckOut,
			ExpiresAt: s.now().UTC().Add(s.ttl),
		}
		if err := s.repo.WithTx(tx).Create(ctx, lock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation lock")
		}
		result = &LockResult{
			LockID:    lock.ID,
			UnitID:    lock.UnitID,
			CheckIn:   check.CheckIn,
			CheckOut:  check.CheckOut,
			ExpiresAt: lock.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDatesUnavailable) {
			s.metrics.IncLock(metrics.LockOutcomeConflict)
		}
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock reservation")
		}
		return nil, err
	}
	s.metrics.IncLock(metrics.LockOutcomeCreated)
	return result, nil
}

func (s *service) ReleaseReservationLock(ctx context.Context, lockID uuid.UUID) error {
	if lockID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lock id required")
	}
	deleted, err := s.repo.Delete(ctx, lockID)
	if err != nil {
		s.metrics.IncLock(metrics.LockOutcomeReleaseFailed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(ErrReleaseFailed, err), "release reservation lock")
	}
	if deleted == 0 {
		s.metrics.IncLock(metrics.LockOutcomeReleaseFailed)
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrReleaseFailed, "reservation lock not found")
	}
	s.metrics.IncLock(metrics.LockOutcomeReleased)
	return nil
}

func (s *service) GetLock(ctx context.Context, lockID uuid.UUID) (*models.ReservationLock, error) {
	if lockID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lock id required")
	}
	lock, err := s.repo.FindByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation lock not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation lock")
	}
	return lock, nil
}
