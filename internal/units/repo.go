package units

import (
	"context"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/repo"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists rental units.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, unit *models.Unit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	List(ctx context.Context, params ListParams) ([]models.Unit, *pagination.Cursor, error)
}

// ListParams selects one page of units in creation order.
type ListParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	base repo.Base[models.Unit]
}

// NewRepository binds a GORM DB to unit operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase[models.Unit](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, unit *models.Unit) error {
	return r.base.Create(ctx, unit)
}

// FindByID returns gorm.ErrRecordNotFound when the unit does not exist.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.base.FindByID(ctx, id)
}

// FindByIDForUpdate holds the unit's row lock until the surrounding
// transaction ends, serialising lock attempts on one unit.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	return r.base.FindByIDForUpdate(ctx, id)
}

func (r *repository) Update(ctx context.Context, unit *models.Unit) error {
	return r.base.Save(ctx, unit)
}

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Unit, *pagination.Cursor, error) {
	query := r.base.DB(ctx).Model(&models.Unit{})
	if params.Cursor != nil {
		query = query.Where("(created_at, id) >= (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var units []models.Unit
	if err := query.Order("created_at ASC, id ASC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&units).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Page(units, params.Limit, func(u models.Unit) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	})
	return page, next, nil
}
