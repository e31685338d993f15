package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

type contactBody struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyReportsFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","email":"nope"}`))
	var body contactBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]any)
	fields, _ := details["fields"].(map[string]string)
	if fields["name"] != "is required" || fields["email"] != "must be a valid email" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDecodeJSONBodyRejectsUnknownFieldsAndEmpty(t *testing.T) {
	var body contactBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","email":"a@b.co","extra":1}`))
	if err := DecodeJSONBody(req, &body); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSONBody(req, &body); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&min=12.50&size=S,M&size=L&bad=x", nil)

	if page, err := ParseQueryInt(req, "page", 1, 1, 10); err != nil || page != 3 {
		t.Fatalf("page: %d %v", page, err)
	}
	if _, err := ParseQueryInt(req, "page", 1, 1, 2); err == nil {
		t.Fatal("expected range error")
	}
	if min, err := ParseQueryDecimal(req, "min"); err != nil || min == nil || min.String() != "12.5" {
		t.Fatalf("min: %v %v", min, err)
	}
	if missing, err := ParseQueryDecimal(req, "max"); err != nil || missing != nil {
		t.Fatalf("expected nil for missing decimal, got %v %v", missing, err)
	}
	if _, err := ParseQueryDecimal(req, "bad"); err == nil {
		t.Fatal("expected parse error")
	}
	if sizes := ParseQueryList(req, "size"); strings.Join(sizes, "|") != "S|M|L" {
		t.Fatalf("unexpected sizes %v", sizes)
	}
}

func TestParseUUIDParam(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("id", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	if _, err := ParseUUIDParam(req, "id"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"  silk \t  dress\n", 0, "silk dress"},
		{"linen shirt", 5, "linen"},
		{"robe de soirée", 13, "robe de soiré"},
		{"ab cd", 3, "ab"},
	}
	for _, tc := range tests {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
