package middleware

import (
	"context"

	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/identity"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxEmail  contextKey = "actor_email"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// IdentityFromContext rebuilds the caller seeded by Auth. The zero value
// means the request is anonymous.
func IdentityFromContext(ctx context.Context) identity.Identity {
	if ctx == nil {
		return identity.Identity{}
	}
	email, _ := ctx.Value(ctxEmail).(string)
	return identity.Identity{
		UserID: UserIDFromContext(ctx),
		Email:  email,
		Role:   enums.Role(RoleFromContext(ctx)),
	}
}

// WithIdentity injects the caller into the context.
func WithIdentity(ctx context.Context, who identity.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, who.UserID)
	ctx = context.WithValue(ctx, ctxRole, string(who.Role))
	return context.WithValue(ctx, ctxEmail, who.Email)
}
