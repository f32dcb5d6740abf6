package controllers

import (
	"net/http"

	"github.com/loftstay/loftstay-backend/api/responses"
	"github.com/loftstay/loftstay-backend/api/validators"
	"github.com/loftstay/loftstay-backend/internal/pricing"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

// UnitPricing quotes a stay. Amounts are rendered with two decimals.
func UnitPricing(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
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

		breakdown, err := svc.CalculatePricing(r.Context(), unitID, checkIn, checkOut)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, breakdown.Display())
	}
}
