package reservations

import (
	"context"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/repo"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository reads reservations written by the booking flow.
type Repository interface {
	ListByUnitAndStatus(ctx context.Context, unitID uuid.UUID, statuses ...enums.ReservationStatus) ([]models.Reservation, error)
	ListUnitIDsWithStatus(ctx context.Context, statuses ...enums.ReservationStatus) ([]uuid.UUID, error)
}

type repository struct {
	base repo.Base[models.Reservation]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase[models.Reservation](db)}
}

func (r *repository) ListByUnitAndStatus(ctx context.Context, unitID uuid.UUID, statuses ...enums.ReservationStatus) ([]models.Reservation, error) {
	query := r.base.DB(ctx).Where("unit_id = ?", unitID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.Reservation
	if err := query.Order("check_in ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListUnitIDsWithStatus(ctx context.Context, statuses ...enums.ReservationStatus) ([]uuid.UUID, error) {
	query := r.base.DB(ctx).Model(&models.Reservation{}).Distinct("unit_id")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var ids []uuid.UUID
	if err := query.Order("unit_id ASC").Pluck("unit_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
