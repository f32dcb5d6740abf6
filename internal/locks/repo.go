package locks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/repo"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists reservation locks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, lock *models.ReservationLock) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReservationLock, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, unitID *uuid.UUID, now time.Time) (int64, error)
}

type repository struct {
	base repo.Base[models.ReservationLock]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase[models.ReservationLock](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, lock *models.ReservationLock) error {
	return r.base.Create(ctx, lock)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReservationLock, error) {
	return r.base.FindByID(ctx, id)
}

// Delete removes one lock and reports how many rows went away.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.base.DeleteByID(ctx, id)
}

// DeleteExpired removes locks with expires_at <= now, for one unit or for all
// units when unitID is nil.
func (r *repository) DeleteExpired(ctx context.Context, unitID *uuid.UUID, now time.Time) (int64, error) {
	query := r.base.DB(ctx).Where("expires_at <= ?", now)
	if unitID != nil {
		query = query.Where("unit_id = ?", *unitID)
	}
	res := query.Delete(&models.ReservationLock{})
	return res.RowsAffected, res.Error
}
