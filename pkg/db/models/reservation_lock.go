package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationLock is a short-lived hold on a unit's dates while a guest
// completes checkout. A lock counts only while ExpiresAt is in the future.
type ReservationLock struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UnitID    uuid.UUID  `gorm:"column:unit_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	CheckIn   time.Time  `gorm:"column:check_in;type:date;not null"`
	CheckOut  time.Time  `gorm:"column:check_out;type:date;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (l *ReservationLock) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ActiveAt reports whether the lock still holds its dates at t.
func (l ReservationLock) ActiveAt(t time.Time) bool {
	return l.ExpiresAt.After(t)
}
