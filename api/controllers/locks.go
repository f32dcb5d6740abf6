package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loftstay/loftstay-backend/api/middleware"
	"github.com/loftstay/loftstay-backend/api/responses"
	"github.com/loftstay/loftstay-backend/api/validators"
	"github.com/loftstay/loftstay-backend/internal/locks"
	"github.com/loftstay/loftstay-backend/pkg/daterange"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

// timeNow is swapped in tests to pin lock activity.
var timeNow = time.Now

type lockCreateRequest struct {
	UnitID   string `json:"unit_id" validate:"required,uuid"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

func (req lockCreateRequest) toInput(r *http.Request) (locks.LockInput, error) {
	unitID, err := uuid.Parse(strings.TrimSpace(req.UnitID))
	if err != nil {
		return locks.LockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit_id")
	}
	return locks.LockInput{
		UnitID:   unitID,
		CheckIn:  strings.TrimSpace(req.CheckIn),
		CheckOut: strings.TrimSpace(req.CheckOut),
		UserID:   middleware.UserUUIDFromContext(r.Context()),
	}, nil
}

type lockResponse struct {
	LockID    uuid.UUID  `json:"lock_id"`
	UnitID    uuid.UUID  `json:"unit_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CheckIn   string     `json:"check_in"`
	CheckOut  string     `json:"check_out"`
	ExpiresAt string     `json:"expires_at"`
	Active    bool       `json:"active"`
}

// CreateLock holds a stay for the caller while they complete checkout.
func CreateLock(svc locks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lock service unavailable"))
			return
		}

		var req lockCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.LockReservation(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithLockID(r.Context(), result.LockID.String()), "lock.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// GetLock returns a lock the caller owns. Admins may read any lock.
func GetLock(svc locks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lock service unavailable"))
			return
		}

		lock, err := loadOwnedLock(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toLockResponse(lock))
	}
}

// ReleaseLock deletes a lock the caller owns.
func ReleaseLock(svc locks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lock service unavailable"))
			return
		}

		lock, err := loadOwnedLock(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ReleaseReservationLock(r.Context(), lock.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loadOwnedLock(r *http.Request, svc locks.Service) (*models.ReservationLock, error) {
	lockID, err := validators.ParseUUIDParam(r, "lockId")
	if err != nil {
		return nil, err
	}
	lock, err := svc.GetLock(r.Context(), lockID)
	if err != nil {
		return nil, err
	}
	if middleware.RoleFromContext(r.Context()) == enums.ActorRoleAdmin.String() {
		return lock, nil
	}
	caller := middleware.UserUUIDFromContext(r.Context())
	if lock.UserID != nil && (caller == nil || *caller != *lock.UserID) {
		// Other users' locks are reported as missing.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation lock not found")
	}
	return lock, nil
}

func toLockResponse(lock *models.ReservationLock) lockResponse {
	return lockResponse{
		LockID:    lock.ID,
		UnitID:    lock.UnitID,
		UserID:    lock.UserID,
		CheckIn:   daterange.Format(lock.CheckIn),
		CheckOut:  daterange.Format(lock.CheckOut),
		ExpiresAt: lock.ExpiresAt.UTC().Format(time.RFC3339),
		Active:    lock.ActiveAt(timeNow()),
	}
}
