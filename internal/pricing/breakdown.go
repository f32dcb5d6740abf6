package pricing

import (
	"github.com/loftstay/loftstay-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AppliedOverride records a night whose base rate was replaced.
type AppliedOverride struct {
	Date          string          `json:"date"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	OverridePrice decimal.Decimal `json:"override_price"`
	Reason        string          `json:"reason,omitempty"`
}

type Breakdown struct {
	Nights        int               `json:"nights"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	ServiceFee    decimal.Decimal   `json:"service_fee"`
	CleaningFee   decimal.Decimal   `json:"cleaning_fee"`
	TaxableAmount decimal.Decimal   `json:"taxable_amount"`
	Taxes         decimal.Decimal   `json:"taxes"`
	Total         decimal.Decimal   `json:"total"`
	Currency      enums.Currency    `json:"currency"`
	Overrides     []AppliedOverride `json:"overrides"`
}

type DisplayOverride struct {
	Date          string `json:"date"`
	OriginalPrice string `json:"original_price"`
	OverridePrice string `json:"override_price"`
	Reason        string `json:"reason,omitempty"`
}

// DisplayBreakdown is a Breakdown with every amount rounded half away from
// zero to two decimals.
type DisplayBreakdown struct {
	Nights        int               `json:"nights"`
	Subtotal      string            `json:"subtotal"`
	ServiceFee    string            `json:"service_fee"`
	CleaningFee   string            `json:"cleaning_fee"`
	TaxableAmount string            `json:"taxable_amount"`
	Taxes         string            `json:"taxes"`
	Total         string            `json:"total"`
	Currency      string            `json:"currency"`
	Overrides     []DisplayOverride `json:"overrides"`
}

func (b *Breakdown) Display() DisplayBreakdown {
	if b == nil {
		return DisplayBreakdown{Overrides: []DisplayOverride{}}
	}
	overrides := make([]DisplayOverride, 0, len(b.Overrides))
	for _, o := range b.Overrides {
		overrides = append(overrides, DisplayOverride{
			Date:          o.Date,
			OriginalPrice: o.OriginalPrice.StringFixed(2),
			OverridePrice: o.OverridePrice.StringFixed(2),
			Reason:        o.Reason,
		})
	}
	return DisplayBreakdown{
		Nights:        b.Nights,
		Subtotal:      b.Subtotal.StringFixed(2),
		ServiceFee:    b.ServiceFee.StringFixed(2),
		CleaningFee:   b.CleaningFee.StringFixed(2),
		TaxableAmount: b.TaxableAmount.StringFixed(2),
		Taxes:         b.Taxes.StringFixed(2),
		Total:         b.Total.StringFixed(2),
		Currency:      b.Currency.String(),
		Overrides:     overrides,
	}
}
