package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/repo"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository holds the queries behind availability checks and per-date edits.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListDateRecords(ctx context.Context, unitID uuid.UUID, r daterange.Range) ([]models.UnitAvailability, error)
	ListBlockedDates(ctx context.Context, unitID uuid.UUID, r daterange.Range) ([]models.UnitAvailability, error)
	ListPriceOverrides(ctx context.Context, unitID uuid.UUID, r daterange.Range) ([]models.UnitAvailability, error)
	ListOverlappingReservations(ctx context.Context, unitID uuid.UUID, r daterange.Range) ([]models.Reservation, error)
	ListActiveLocks(ctx context.Context, params activeLockParams) ([]models.ReservationLock, error)
	UpsertDate(ctx context.Context, record *models.UnitAvailability, setPrice bool) error
}

type activeLockParams struct {
	UnitID uuid.UUID
	Range  daterange.Range
	Now    time.Time
	// ExcludeUserID hides locks held by the caller. Locks without a holder always count.
	ExcludeUserID *uuid.UUID
}

type repository struct {
	base repo.Base[models.UnitAvailability]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase[models.UnitAvailability](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Bind(tx)}
}

func (r *repository) inRange(ctx context.Context, unitID uuid.UUID, rng daterange.Range) *gorm.DB {
	return r.base.DB(ctx).
		Where("unit_id = ?", unitID).
		Where("date >= ? AND date < ?", rng.CheckIn, rng.CheckOut)
}

func (r *repository) ListDateRecords(ctx context.Context, unitID uuid.UUID, rng daterange.Range) ([]models.UnitAvailability, error) {
	var rows []models.UnitAvailability
	if err := r.inRange(ctx, unitID, rng).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBlockedDates(ctx context.Context, unitID uuid.UUID, rng daterange.Range) ([]models.UnitAvailability, error) {
	var rows []models.UnitAvailability
	if err := r.inRange(ctx, unitID, rng).
		Where("is_available = ?", false).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListPriceOverrides(ctx context.Context, unitID uuid.UUID, rng daterange.Range) ([]models.UnitAvailability, error) {
	var rows []models.UnitAvailability
	if err := r.inRange(ctx, unitID, rng).
		Where("price_override IS NOT NULL").
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListOverlappingReservations uses the half-open test: existing.check_in <
// requested.check_out AND existing.check_out > requested.check_in.
func (r *repository) ListOverlappingReservations(ctx context.Context, unitID uuid.UUID, rng daterange.Range) ([]models.Reservation, error) {
	var rows []models.Reservation
	if err := r.base.DB(ctx).
		Where("unit_id = ?", unitID).
		Where("status IN ?", enums.BlockingReservationStatuses).
		Where("check_in < ? AND check_out > ?", rng.CheckOut, rng.CheckIn).
		Order("check_in ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListActiveLocks(ctx context.Context, params activeLockParams) ([]models.ReservationLock, error) {
	query := r.base.DB(ctx).
		Where("unit_id = ?", params.UnitID).
		Where("expires_at > ?", params.Now).
		Where("check_in < ? AND check_out > ?", params.Range.CheckOut, params.Range.CheckIn)
	if params.ExcludeUserID != nil {
		query = query.Where("(user_id IS NULL OR user_id <> ?)", *params.ExcludeUserID)
	}
	var rows []models.ReservationLock
	if err := query.Order("expires_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertDate writes one (unit, date) row. An existing price override is kept
// unless setPrice is true.
func (r *repository) UpsertDate(ctx context.Context, record *models.UnitAvailability, setPrice bool) error {
	columns := []string{"is_available", "blocked_reason", "updated_at"}
	if setPrice {
		columns = append(columns, "price_override")
	}
	return r.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "unit_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(record).Error
}
