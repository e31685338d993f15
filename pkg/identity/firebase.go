package identity

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/elarose/storefront/pkg/config"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens.
type FirebaseVerifier struct {
	client      idTokenVerifier
	roleClaim   string
	adminEmails []string
}

func NewFirebaseVerifier(ctx context.Context, cfg config.IdentityConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return newFirebaseVerifier(client, cfg), nil
}

func newFirebaseVerifier(client idTokenVerifier, cfg config.IdentityConfig) *FirebaseVerifier {
	roleClaim := cfg.AdminRoleClaim
	if roleClaim == "" {
		roleClaim = "role"
	}
	return &FirebaseVerifier{client: client, roleClaim: roleClaim, adminEmails: cfg.AdminEmails}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if decoded.UID == "" {
		return Identity{}, fmt.Errorf("token uid is required")
	}

	email, _ := decoded.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	role, _ := decoded.Claims[v.roleClaim].(string)

	return Identity{
		UserID: decoded.UID,
		Email:  email,
		Role:   resolveRole(role, email, v.adminEmails),
	}, nil
}
