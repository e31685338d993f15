// Package identity verifies bearer tokens issued by the external identity
// provider and exposes the `{id, email, role}` subset the storefront reads.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/elarose/storefront/pkg/config"
	"github.com/elarose/storefront/pkg/enums"
)

// Identity is the verified caller.
type Identity struct {
	UserID string     `json:"id"`
	Email  string     `json:"email"`
	Role   enums.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// NewVerifier builds the verifier selected by cfg.Provider.
func NewVerifier(ctx context.Context, cfg config.IdentityConfig) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.IdentityProviderJWT, "":
		return NewJWTVerifier(cfg)
	case config.IdentityProviderFirebase:
		return NewFirebaseVerifier(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported identity provider %q", cfg.Provider)
	}
}

// resolveRole applies the admin email allowlist on top of the token role.
func resolveRole(raw, email string, adminEmails []string) enums.Role {
	role := enums.ParseRole(raw)
	if role.IsAdmin() {
		return role
	}
	for _, candidate := range adminEmails {
		if email != "" && strings.EqualFold(strings.TrimSpace(candidate), email) {
			return enums.RoleAdmin
		}
	}
	return role
}
