package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/identity"
)

type stubVerifier struct {
	who identity.Identity
	err error
	got string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	s.got = token
	return s.who, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(&stubVerifier{}, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(&stubVerifier{err: errors.New("signature mismatch")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsIdentity(t *testing.T) {
	verifier := &stubVerifier{who: identity.Identity{UserID: "user-1", Email: "ada@example.com", Role: enums.RoleAdmin}}
	var captured identity.Identity
	handler := Auth(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "bearer  tok-123 ")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if verifier.got != "tok-123" {
		t.Fatalf("expected trimmed token, got %q", verifier.got)
	}
	if captured != verifier.who {
		t.Fatalf("unexpected identity %+v", captured)
	}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		role enums.Role
		want int
	}{
		{enums.RoleAdmin, http.StatusOK},
		{enums.RoleCustomer, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req = req.WithContext(WithIdentity(req.Context(), identity.Identity{UserID: "u", Role: tc.role}))
		resp := httptest.NewRecorder()
		RequireAdmin(nil)(okHandler()).ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("role %s: expected %d got %d", tc.role, tc.want, resp.Code)
		}
	}
}
