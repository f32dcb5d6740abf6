package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loftstay/loftstay-backend/pkg/enums"
)

// Reservation is owned by the booking flow; this service only reads it.
type Reservation struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UnitID    uuid.UUID               `gorm:"column:unit_id;type:uuid;not null;index"`
	UserID    *uuid.UUID              `gorm:"column:user_id;type:uuid"`
	CheckIn   time.Time               `gorm:"column:check_in;type:date;not null"`
	CheckOut  time.Time               `gorm:"column:check_out;type:date;not null"`
	Status    enums.ReservationStatus `gorm:"type:reservation_status;not null;default:pending"`
	CreatedAt time.Time               `gorm:"autoCreateTime"`
	UpdatedAt time.Time               `gorm:"autoUpdateTime"`
}

func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
