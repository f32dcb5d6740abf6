package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/loftstay/loftstay-backend/api/middleware"
	"github.com/loftstay/loftstay-backend/api/responses"
	"github.com/loftstay/loftstay-backend/api/validators"
	"github.com/loftstay/loftstay-backend/internal/availability"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

const maxBlockedReasonLength = 255

// UnitAvailability answers whether a stay can be booked.
func UnitAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		unitID, err := validators.ParseUUIDParam(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkIn, checkOut, err := stayQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckAvailability(r.Context(), availability.CheckInput{
			UnitID:   unitID,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			UserID:   middleware.UserUUIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UnitCalendar returns the per-day calendar for [from, to).
func UnitCalendar(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		unitID, err := validators.ParseUUIDParam(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.RequireQuery(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.RequireQuery(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		calendar, err := svc.GetAvailabilityCalendar(r.Context(), unitID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, calendar)
	}
}

type availabilityDateRequest struct {
	Date               string  `json:"date" validate:"required,isodate"`
	IsAvailable        *bool   `json:"is_available" validate:"required"`
	BlockedReason      *string `json:"blocked_reason"`
	PriceOverride      *string `json:"price_override" validate:"omitempty,decimal"`
	ClearPriceOverride bool    `json:"clear_price_override"`
}

type availabilityBatchRequest struct {
	Dates []availabilityDateRequest `json:"dates" validate:"required,min=1,max=366,dive"`
}

func (req availabilityBatchRequest) toUpdates(r *http.Request) ([]availability.DateUpdate, error) {
	unitID, err := validators.ParseUUIDParam(r, "unitId")
	if err != nil {
		return nil, err
	}
	updates := make([]availability.DateUpdate, 0, len(req.Dates))
	for i, entry := range req.Dates {
		date, err := daterange.ParseDate(strings.TrimSpace(entry.Date))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"index": i, "field": "date"})
		}
		update := availability.DateUpdate{
			UnitID:             unitID,
			Date:               date,
			IsAvailable:        *entry.IsAvailable,
			ClearPriceOverride: entry.ClearPriceOverride,
		}
		if entry.BlockedReason != nil {
			reason := validators.SanitizeString(*entry.BlockedReason, maxBlockedReasonLength)
			if reason != "" {
				update.BlockedReason = &reason
			}
		}
		if entry.PriceOverride != nil {
			price, err := decimal.NewFromString(strings.TrimSpace(*entry.PriceOverride))
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price override").WithDetails(map[string]any{"index": i, "field": "price_override"})
			}
			update.PriceOverride = &price
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// AdminUpdateAvailability writes a batch of per-date rows for one unit. When
// some dates fail the response is 207 with both lists so the caller can retry
// only the failed dates.
func AdminUpdateAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		var req availabilityBatchRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updates, err := req.toUpdates(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateAvailability(r.Context(), updates)
		if err != nil {
			if result == nil || len(result.Updated) == 0 {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if logg != nil {
				logg.Error(logg.WithField(r.Context(), "failed_dates", len(result.Failed)), "availability.partial_update", err)
			}
			responses.WriteSuccessStatus(w, http.StatusMultiStatus, result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func stayQuery(r *http.Request) (string, string, error) {
	checkIn, err := validators.RequireQuery(r, "check_in")
	if err != nil {
		return "", "", err
	}
	checkOut, err := validators.RequireQuery(r, "check_out")
	if err != nil {
		return "", "", err
	}
	return checkIn, checkOut, nil
}
