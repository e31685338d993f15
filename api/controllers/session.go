package controllers

import (
	"context"
	"net/http"

	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/pkg/logger"
)

type userDataClearer interface {
	ClearUserData(ctx context.Context, userID string) error
}

// SessionLogout drops the caller's cart, wishlist and attached discount.
// The token itself is revoked by the identity provider on the client side.
func SessionLogout(svc userDataClearer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearUserData(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
