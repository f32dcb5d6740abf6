// Package pricing quotes the price of a stay from a unit's base rate, its
// per-date overrides, the platform service fee and the unit's tax rate.
package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrUnitNotFound is wrapped by the NOT_FOUND error returned for unknown units.
var ErrUnitNotFound = errors.New("pricing: unit not found")

var DefaultServiceFeeRate = decimal.RequireFromString("0.12")

type Service interface {
	CalculatePricing(ctx context.Context, unitID uuid.UUID, checkIn, checkOut string) (*Breakdown, error)
}

type unitReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
}

type overrideReader interface {
	ListPriceOverrides(ctx context.Context, unitID uuid.UUID, r daterange.Range) ([]models.UnitAvailability, error)
}

type ServiceParams struct {
	Units          unitReader
	Overrides      overrideReader
	Validator      daterange.Validator
	ServiceFeeRate decimal.Decimal
	Currency       enums.Currency
}

type service struct {
	units     unitReader
	overrides overrideReader
	validator daterange.Validator
	feeRate   decimal.Decimal
	currency  enums.Currency
}

func NewService(params ServiceParams) (Service, error) {
	if params.Units == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "unit reader required")
	}
	if params.Overrides == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "override reader required")
	}
	if params.ServiceFeeRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service fee rate must not be negative")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyEUR
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	return &service{
		units:     params.Units,
		overrides: params.Overrides,
		validator: params.Validator,
		feeRate:   params.ServiceFeeRate,
		currency:  currency,
	}, nil
}

func (s *service) CalculatePricing(ctx context.Context, unitID uuid.UUID, checkIn, checkOut string) (*Breakdown, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	rng, err := s.validator.Parse(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	unit, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrUnitNotFound, "unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
	}

	rows, err := s.overrides.ListPriceOverrides(ctx, unitID, rng)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price overrides")
	}
	byDate := make(map[string]models.UnitAvailability, len(rows))
	for _, row := range rows {
		if row.PriceOverride == nil {
			continue
		}
		byDate[daterange.Format(row.Date)] = row
	}

	subtotal := decimal.Zero
	applied := []AppliedOverride{}
	for _, date := range rng.Dates() {
		key := daterange.Format(date)
		row, ok := byDate[key]
		if !ok {
			subtotal = subtotal.Add(unit.PricePerNight)
			continue
		}
		price := *row.PriceOverride
		subtotal = subtotal.Add(price)
		override := AppliedOverride{
			Date:          key,
			OriginalPrice: unit.PricePerNight,
			OverridePrice: price,
		}
		if row.BlockedReason != nil {
			override.Reason = *row.BlockedReason
		}
		applied = append(applied, override)
	}

	return compute(computeInput{
		nights:      rng.Nights(),
		subtotal:    subtotal,
		feeRate:     s.feeRate,
		cleaningFee: unit.CleaningFee,
		taxRate:     unit.TaxRate,
		currency:    s.currency,
		overrides:   applied,
	}), nil
}

type computeInput struct {
	nights      int
	subtotal    decimal.Decimal
	feeRate     decimal.Decimal
	cleaningFee decimal.Decimal
	taxRate     decimal.Decimal
	currency    enums.Currency
	overrides   []AppliedOverride
}

// compute applies the fee and tax rules. Amounts stay exact; rounding happens
// only in Display.
func compute(in computeInput) *Breakdown {
	serviceFee := in.subtotal.Mul(in.feeRate)
	taxable := in.subtotal.Add(serviceFee).Add(in.cleaningFee)
	taxes := taxable.Mul(in.taxRate)
	return &Breakdown{
		Nights:        in.nights,
		Subtotal:      in.subtotal,
		ServiceFee:    serviceFee,
		CleaningFee:   in.cleaningFee,
		TaxableAmount: taxable,
		Taxes:         taxes,
		Total:         taxable.Add(taxes),
		Currency:      in.currency,
		Overrides:     in.overrides,
	}
}
