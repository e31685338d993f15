package middleware

import (
	"net/http"
	"strings"

	"github.com/elarose/storefront/api/responses"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/identity"
	"github.com/elarose/storefront/pkg/logger"
)

// Auth validates a bearer token with the identity provider and seeds the
// request context with the caller.
func Auth(verifier identity.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			who, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if pkgerrors.As(err) == nil {
					err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
				}
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if strings.TrimSpace(who.UserID) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token has no subject"))
				return
			}

			ctx := WithIdentity(r.Context(), who)
			if logg != nil {
				ctx = logg.WithUserID(ctx, who.UserID)
				ctx = logg.WithRole(ctx, string(who.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
