package units

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages the unit catalogue used by availability and pricing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Unit, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Unit, error)
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
}

// ListResult is one page of units. NextCursor is empty on the last page.
type ListResult struct {
	Items      []models.Unit
	NextCursor string
}

type CreateInput struct {
	Name          string
	Status        enums.UnitStatus
	MinimumStay   int
	MaximumStay   *int
	PricePerNight decimal.Decimal
	CleaningFee   decimal.Decimal
	TaxRate       decimal.Decimal
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// ClearMaximumStay removes the maximum stay limit.
type UpdateInput struct {
	Name             *string
	Status           *enums.UnitStatus
	MinimumStay      *int
	MaximumStay      *int
	ClearMaximumStay bool
	PricePerNight    *decimal.Decimal
	CleaningFee      *decimal.Decimal
	TaxRate          *decimal.Decimal
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "units repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Unit, error) {
	status := input.Status
	if status == "" {
		status = enums.UnitStatusAvailable
	}
	minimumStay := input.MinimumStay
	if minimumStay == 0 {
		minimumStay = 1
	}
	unit := &models.Unit{
		Name:          strings.TrimSpace(input.Name),
		Status:        status,
		MinimumStay:   minimumStay,
		MaximumStay:   input.MaximumStay,
		PricePerNight: input.PricePerNight,
		CleaningFee:   input.CleaningFee,
		TaxRate:       input.TaxRate,
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create unit")
	}
	return unit, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}
	return unit, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Unit, error) {
	unit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		unit.Name = strings.TrimSpace(*input.Name)
	}
	if input.Status != nil {
		unit.Status = *input.Status
	}
	if input.MinimumStay != nil {
		unit.MinimumStay = *input.MinimumStay
	}
	if input.ClearMaximumStay {
		unit.MaximumStay = nil
	} else if input.MaximumStay != nil {
		maximum := *input.MaximumStay
		unit.MaximumStay = &maximum
	}
	if input.PricePerNight != nil {
		unit.PricePerNight = *input.PricePerNight
	}
	if input.CleaningFee != nil {
		unit.CleaningFee = *input.CleaningFee
	}
	if input.TaxRate != nil {
		unit.TaxRate = *input.TaxRate
	}

	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, unit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update unit")
	}
	return unit, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListParams{Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func validateUnit(unit *models.Unit) error {
	fields := map[string]string{}
	if unit.Name == "" {
		fields["name"] = "name is required"
	}
	if !unit.Status.IsValid() {
		fields["status"] = "unknown unit status"
	}
	if unit.MinimumStay < 1 {
		fields["minimum_stay"] = "minimum stay must be at least 1 night"
	}
	if unit.MaximumStay != nil && *unit.MaximumStay < unit.MinimumStay {
		fields["maximum_stay"] = "maximum stay must not be below minimum stay"
	}
	if unit.PricePerNight.IsNegative() {
		fields["price_per_night"] = "price must not be negative"
	}
	if unit.CleaningFee.IsNegative() {
		fields["cleaning_fee"] = "cleaning fee must not be negative"
	}
	if unit.TaxRate.IsNegative() || unit.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		fields["tax_rate"] = "tax rate must be in [0, 1)"
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid unit").WithDetails(fields)
}
