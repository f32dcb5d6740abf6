package controllers

import (
	"net/http"

	"github.com/loftstay/loftstay-backend/api/responses"
	"github.com/loftstay/loftstay-backend/api/validators"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

// AdminSyncUnit runs a reconciliation pass for one unit on demand.
func AdminSyncUnit(svc availsync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		unitID, err := validators.ParseUUIDParam(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.SynchronizeAvailability(r.Context(), unitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminSweepLocks deletes every expired reservation lock.
func AdminSweepLocks(svc availsync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		deleted, err := svc.SweepExpiredLocks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"deleted": deleted})
	}
}
