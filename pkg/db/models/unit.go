package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/loftstay/loftstay-backend/pkg/enums"
)

// Unit is a bookable rental unit with its base nightly rate and stay rules.
type Unit struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name          string           `gorm:"type:text;not null"`
	Status        enums.UnitStatus `gorm:"type:unit_status;not null;default:available"`
	MinimumStay   int              `gorm:"column:minimum_stay;not null;default:1"`
	MaximumStay   *int             `gorm:"column:maximum_stay"`
	PricePerNight decimal.Decimal  `gorm:"column:price_per_night;type:numeric(12,2);not null"`
	CleaningFee   decimal.Decimal  `gorm:"column:cleaning_fee;type:numeric(12,2);not null;default:0"`
	TaxRate       decimal.Decimal  `gorm:"column:tax_rate;type:numeric(6,4);not null;default:0"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime"`
}

func (u *Unit) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = enums.UnitStatusAvailable
	}
	if u.MinimumStay < 1 {
		u.MinimumStay = 1
	}
	return nil
}
