package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// ReservedReason is the blocked reason written for dates covered by a
// confirmed reservation.
const ReservedReason = "Reserved"

// CheckInput identifies a requested stay. UserID, when set, lets the caller's
// own reservation locks pass.
type CheckInput struct {
	UnitID   uuid.UUID
	CheckIn  string
	CheckOut string
	UserID   *uuid.UUID
}

type Restriction struct {
	Type    enums.RestrictionType `json:"type"`
	Message string                `json:"message"`
	Value   *int                  `json:"value,omitempty"`
}

// CheckResult is the availability verdict for one stay.
type CheckResult struct {
	UnitID              uuid.UUID     `json:"unit_id"`
	CheckIn             string        `json:"check_in"`
	CheckOut            string        `json:"check_out"`
	Nights              int           `json:"nights"`
	IsAvailable         bool          `json:"is_available"`
	UnavailableDates    []string      `json:"unavailable_dates"`
	MinimumStay         int           `json:"minimum_stay"`
	MaximumStay         *int          `json:"maximum_stay,omitempty"`
	Restrictions        []Restriction `json:"restrictions"`
	ReservationConflict bool          `json:"reservation_conflict"`
	LockConflict        bool          `json:"lock_conflict"`
	// Stay is the validated range the verdict applies to.
	Stay daterange.Range `json:"-"`
}

type CalendarDay struct {
	Date          string           `json:"date"`
	IsAvailable   bool             `json:"is_available"`
	Price         decimal.Decimal  `json:"price"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	BlockedReason *string          `json:"blocked_reason,omitempty"`
}

type Calendar struct {
	UnitID uuid.UUID     `json:"unit_id"`
	From   string        `json:"from"`
	To     string        `json:"to"`
	Days   []CalendarDay `json:"days"`
}

// DateUpdate is one per-date write. A nil PriceOverride keeps any stored
// override unless ClearPriceOverride is set.
type DateUpdate struct {
	UnitID             uuid.UUID
	Date               time.Time
	IsAvailable        bool
	BlockedReason      *string
	PriceOverride      *decimal.Decimal
	ClearPriceOverride bool
}

type UpdatedDate struct {
	UnitID uuid.UUID `json:"unit_id"`
	Date   string    `json:"date"`
}

type FailedDate struct {
	UnitID uuid.UUID `json:"unit_id"`
	Date   string    `json:"date"`
	Error  string    `json:"error"`
}

type UpdateResult struct {
	Updated []UpdatedDate `json:"updated"`
	Failed  []FailedDate  `json:"failed"`
}

// UpdateFailedError names the date whose write failed.
type UpdateFailedError struct {
	UnitID uuid.UUID
	Date   time.Time
	Err    error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("update availability for unit %s on %s: %v", e.UnitID, daterange.Format(e.Date), e.Err)
}

func (e *UpdateFailedError) Unwrap() error {
	return e.Err
}

// FailedUpdates extracts every per-date failure from an UpdateAvailability error.
func FailedUpdates(err error) []*UpdateFailedError {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Unwrap() != nil {
		err = typed.Unwrap()
	}
	var failures []*UpdateFailedError
	for _, e := range multierr.Errors(err) {
		var failed *UpdateFailedError
		if errors.As(e, &failed) {
			failures = append(failures, failed)
		}
	}
	return failures
}
