// Package daterange validates stay intervals. A Range is the half-open
// interval [CheckIn, CheckOut) of UTC calendar days; the check-out day is
// never occupied.
package daterange

import (
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

const DefaultHorizonMonths = 24

var (
	ErrInvalidFormat  = errors.New("daterange: date must be YYYY-MM-DD")
	ErrInvertedRange  = errors.New("daterange: check-out must be after check-in")
	ErrPastCheckIn    = errors.New("daterange: check-in is in the past")
	ErrTooFarInFuture = errors.New("daterange: check-in is beyond the booking horizon")
)

type Range struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a range from two instants, truncating both to their UTC day.
func New(checkIn, checkOut time.Time) (Range, error) {
	r := Range{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return Range{}, invalid(ErrInvertedRange, "check_out", "check-out must be after check-in")
	}
	return r, nil
}

// ParseSpan parses both dates and checks their order. It does not compare
// against the current day, so it suits calendar reads and admin updates.
func ParseSpan(from, to string) (Range, error) {
	start, err := ParseDate(from)
	if err != nil {
		return Range{}, invalid(ErrInvalidFormat, "from", "invalid date format")
	}
	end, err := ParseDate(to)
	if err != nil {
		return Range{}, invalid(ErrInvalidFormat, "to", "invalid date format")
	}
	return New(start, end)
}

// ParseDate accepts YYYY-MM-DD, or an RFC3339 timestamp truncated to its UTC
// calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidFormat
	}
	if t, err := time.Parse(Layout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	return Day(t), nil
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Nights is the number of occupied days.
func (r Range) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Dates enumerates every occupied day, excluding check-out.
func (r Range) Dates() []time.Time {
	if !r.CheckOut.After(r.CheckIn) {
		return nil
	}
	dates := make([]time.Time, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Overlaps is the half-open intersection test: back-to-back stays do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

func (r Range) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

func (r Range) String() string {
	return Format(r.CheckIn) + "/" + Format(r.CheckOut)
}

// Validator applies booking rules relative to the current day.
type Validator struct {
	Now           func() time.Time
	HorizonMonths int
}

func NewValidator(horizonMonths int, now func() time.Time) Validator {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	if now == nil {
		now = time.Now
	}
	return Validator{Now: now, HorizonMonths: horizonMonths}
}

// Parse parses and validates a requested stay.
func (v Validator) Parse(checkIn, checkOut string) (Range, error) {
	start, err := ParseDate(checkIn)
	if err != nil {
		return Range{}, invalid(ErrInvalidFormat, "check_in", "invalid date format")
	}
	end, err := ParseDate(checkOut)
	if err != nil {
		return Range{}, invalid(ErrInvalidFormat, "check_out", "invalid date format")
	}
	r, err := New(start, end)
	if err != nil {
		return Range{}, err
	}
	if err := v.Validate(r); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks ordering, past check-in and the booking horizon.
func (v Validator) Validate(r Range) error {
	r = Range{CheckIn: Day(r.CheckIn), CheckOut: Day(r.CheckOut)}
	if !r.CheckOut.After(r.CheckIn) {
		return invalid(ErrInvertedRange, "check_out", "check-out must be after check-in")
	}
	today := v.today()
	if r.CheckIn.Before(today) {
		return invalid(ErrPastCheckIn, "check_in", "check-in cannot be in the past")
	}
	horizon := v.HorizonMonths
	if horizon <= 0 {
		horizon = DefaultHorizonMonths
	}
	if r.CheckIn.After(today.AddDate(0, horizon, 0)) {
		return invalid(ErrTooFarInFuture, "check_in", "check-in is too far in the future")
	}
	return nil
}

func (v Validator) today() time.Time {
	if v.Now == nil {
		return Day(time.Now())
	}
	return Day(v.Now())
}

func invalid(sentinel error, field, message string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, sentinel, message).
		WithDetails(map[string]any{"field": field, "reason": sentinel.Error()})
}
