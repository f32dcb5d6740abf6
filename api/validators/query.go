package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
)

func fieldError(field, message string, cause error) *pkgerrors.Error {
	var err *pkgerrors.Error
	if cause != nil {
		err = pkgerrors.Wrap(pkgerrors.CodeValidation, cause, message)
	} else {
		err = pkgerrors.New(pkgerrors.CodeValidation, message)
	}
	return err.WithDetails(map[string]any{"field": field})
}

// ParseUUIDParam reads a chi URL parameter as a UUID.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, fieldError(key, "path parameter required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fieldError(key, "path parameter must be a uuid", err)
	}
	return id, nil
}

func RequireQuery(r *http.Request, key string) (string, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get(key)); raw != "" {
		return raw, nil
	}
	return "", fieldError(key, "query parameter required", nil)
}

// ParseQueryInt returns def when the parameter is absent and rejects values
// outside [lo, hi].
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fieldError(key, "query parameter must be numeric", err)
	}
	if value < lo || value > hi {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": lo, "max": hi})
	}
	return value, nil
}
