package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnitAvailability is the per-date override for a unit. Dates without a row
// are available at the unit's base price.
type UnitAvailability struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UnitID        uuid.UUID        `gorm:"column:unit_id;type:uuid;not null;uniqueIndex:ux_unit_availability_unit_date,priority:1"`
	Date          time.Time        `gorm:"column:date;type:date;not null;uniqueIndex:ux_unit_availability_unit_date,priority:2"`
	IsAvailable   bool             `gorm:"column:is_available;not null"`
	PriceOverride *decimal.Decimal `gorm:"column:price_override;type:numeric(12,2)"`
	BlockedReason *string          `gorm:"column:blocked_reason;type:text"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime"`
}

func (UnitAvailability) TableName() string {
	return "unit_availability"
}

func (a *UnitAvailability) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
