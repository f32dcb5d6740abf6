package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
)

type sampleBody struct {
	Name        string `json:"name" validate:"required"`
	MinimumStay int    `json:"minimum_stay" validate:"min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Loft 4","minimum_stay":2}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if body.Name != "Loft 4" || body.MinimumStay != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","minimum_stay":1,"extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"minimum_stay":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["name"] != "is required" || details["minimum_stay"] != "must be at least 1" {
		t.Fatalf("unexpected details %v", details)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	got, err := ParseUUIDParam(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "unitId", id.String()), "unitId")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}
	if _, err := ParseUUIDParam(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "unitId", "loft-4"), "unitId"); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequireQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?check_in=2026-11-01&check_out=", nil)
	if v, err := RequireQuery(req, "check_in"); err != nil || v != "2026-11-01" {
		t.Fatalf("unexpected %q %v", v, err)
	}
	if _, err := RequireQuery(req, "check_out"); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "  owner stay  ", maxLen: 5, want: "owner"},
		{in: "Gästezimmer", maxLen: 5, want: "Gäste"},
		{in: "roof\x00 leak\n", maxLen: 0, want: "roof leak"},
		{in: "ab cd", maxLen: 3, want: "ab"},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in, tt.maxLen); got != tt.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

type calendarBody struct {
	Dates []calendarEntry `json:"dates" validate:"required,min=1,dive"`
}

type calendarEntry struct {
	Date  string `json:"date" validate:"required,isodate"`
	Price string `json:"price" validate:"omitempty,decimal"`
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"dates":[{"date":"2026-11-01"},{"date":"01/11/2026","price":"-4"}]}`))
	var body calendarBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	if typed == nil {
		t.Fatal("expected validation error")
	}
	details := typed.Details().(map[string]string)
	if details["dates[1].date"] != "must be a date in YYYY-MM-DD format" {
		t.Fatalf("unexpected details %v", details)
	}
	if details["dates[1].price"] != "must be a non-negative decimal amount" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingData(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":    "",
		"trailing": `{"name":"a","minimum_stay":1}{"name":"b"}`,
	} {
		t.Run(name, func(t *testing.T) {
			var body sampleBody
			err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw)), &body)
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	raw := `{"name":"` + strings.Repeat("x", MaxBodyBytes) + `","minimum_stay":1}`
	var body sampleBody
	typed := pkgerrors.As(DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw)), &body))
	if typed == nil || typed.Message() != "request body too large" {
		t.Fatalf("expected body too large, got %v", typed)
	}
}
