package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elarose/storefront/pkg/config"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims is the token shape issued by the hosted identity service. The
// subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret      []byte
	issuer      string
	adminEmails []string
}

func NewJWTVerifier(cfg config.IdentityConfig) (*JWTVerifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTVerifier{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.JWTIssuer,
		adminEmails: cfg.AdminEmails,
	}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, err
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, fmt.Errorf("token subject is required")
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	return Identity{
		UserID: subject,
		Email:  email,
		Role:   resolveRole(claims.Role, email, v.adminEmails),
	}, nil
}

// Mint signs a token for id. Used by local tooling and tests; production
// tokens come from the identity provider.
func Mint(cfg config.IdentityConfig, now time.Time, ttl time.Duration, id Identity) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if id.UserID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if id.Role == "" {
		id.Role = enums.RoleCustomer
	}
	claims := Claims{
		Email: id.Email,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}
