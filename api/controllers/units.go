package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loftstay/loftstay-backend/api/responses"
	"github.com/loftstay/loftstay-backend/api/validators"
	"github.com/loftstay/loftstay-backend/internal/units"
	"github.com/loftstay/loftstay-backend/pkg/db/models"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
	"github.com/loftstay/loftstay-backend/pkg/pagination"
)

const maxUnitNameLength = 120

type unitListResponse struct {
	Units      []unitResponse `json:"units"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type unitResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Status        enums.UnitStatus `json:"status"`
	MinimumStay   int              `json:"minimum_stay"`
	MaximumStay   *int             `json:"maximum_stay,omitempty"`
	PricePerNight string           `json:"price_per_night"`
	CleaningFee   string           `json:"cleaning_fee"`
	TaxRate       string           `json:"tax_rate"`
}

func toUnitResponse(unit *models.Unit) unitResponse {
	return unitResponse{
		ID:            unit.ID,
		Name:          unit.Name,
		Status:        unit.Status,
		MinimumStay:   unit.MinimumStay,
		MaximumStay:   unit.MaximumStay,
		PricePerNight: unit.PricePerNight.StringFixed(2),
		CleaningFee:   unit.CleaningFee.StringFixed(2),
		TaxRate:       unit.TaxRate.String(),
	}
}

type unitCreateRequest struct {
	Name          string `json:"name" validate:"required"`
	Status        string `json:"status"`
	MinimumStay   int    `json:"minimum_stay" validate:"omitempty,min=1"`
	MaximumStay   *int   `json:"maximum_stay" validate:"omitempty,min=1"`
	PricePerNight string `json:"price_per_night" validate:"required,decimal"`
	CleaningFee   string `json:"cleaning_fee" validate:"omitempty,decimal"`
	TaxRate       string `json:"tax_rate" validate:"omitempty,decimal"`
}

func (req unitCreateRequest) toInput() (units.CreateInput, error) {
	input := units.CreateInput{
		Name:        validators.SanitizeString(req.Name, maxUnitNameLength),
		MinimumStay: req.MinimumStay,
		MaximumStay: req.MaximumStay,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := enums.ParseUnitStatus(raw)
		if err != nil {
			return units.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = status
	}
	var err error
	if input.PricePerNight, err = parseAmount("price_per_night", req.PricePerNight); err != nil {
		return units.CreateInput{}, err
	}
	if input.CleaningFee, err = parseOptionalAmount("cleaning_fee", req.CleaningFee); err != nil {
		return units.CreateInput{}, err
	}
	if input.TaxRate, err = parseOptionalAmount("tax_rate", req.TaxRate); err != nil {
		return units.CreateInput{}, err
	}
	return input, nil
}

type unitUpdateRequest struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	MinimumStay      *int    `json:"minimum_stay" validate:"omitempty,min=1"`
	MaximumStay      *int    `json:"maximum_stay" validate:"omitempty,min=1"`
	ClearMaximumStay bool    `json:"clear_maximum_stay"`
	PricePerNight    *string `json:"price_per_night" validate:"omitempty,decimal"`
	CleaningFee      *string `json:"cleaning_fee" validate:"omitempty,decimal"`
	TaxRate          *string `json:"tax_rate" validate:"omitempty,decimal"`
}

func (req unitUpdateRequest) toInput() (units.UpdateInput, error) {
	input := units.UpdateInput{
		MinimumStay:      req.MinimumStay,
		MaximumStay:      req.MaximumStay,
		ClearMaximumStay: req.ClearMaximumStay,
	}
	if req.Name != nil {
		name := validators.SanitizeString(*req.Name, maxUnitNameLength)
		input.Name = &name
	}
	if req.Status != nil {
		status, err := enums.ParseUnitStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return units.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	amounts := []struct {
		field string
		raw   *string
		dest  **decimal.Decimal
	}{
		{"price_per_night", req.PricePerNight, &input.PricePerNight},
		{"cleaning_fee", req.CleaningFee, &input.CleaningFee},
		{"tax_rate", req.TaxRate, &input.TaxRate},
	}
	for _, amount := range amounts {
		if amount.raw == nil {
			continue
		}
		value, err := parseAmount(amount.field, *amount.raw)
		if err != nil {
			return units.UpdateInput{}, err
		}
		*amount.dest = &value
	}
	return input, nil
}

func AdminCreateUnit(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}

		var req unitCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toUnitResponse(unit))
	}
}

func AdminListUnits(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := unitListResponse{Units: make([]unitResponse, 0, len(list.Items)), NextCursor: list.NextCursor}
		for i := range list.Items {
			out.Units = append(out.Units, toUnitResponse(&list.Items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminGetUnit(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}

		unitID, err := validators.ParseUUIDParam(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.Get(r.Context(), unitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUnitResponse(unit))
	}
}

func AdminUpdateUnit(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}

		unitID, err := validators.ParseUUIDParam(r, "unitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req unitUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.Update(r.Context(), unitID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toUnitResponse(unit))
	}
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func parseOptionalAmount(field, raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return parseAmount(field, raw)
}
