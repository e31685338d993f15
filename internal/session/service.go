// Package session tears down the per-user state held outside Postgres.
package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
)

// Clearer drops one kind of per-user state.
type Clearer interface {
	Clear(ctx context.Context, userID string) error
}

// Named pairs a Clearer with the label used in logs.
type Named struct {
	Name    string
	Clearer Clearer
}

type Service struct {
	clearers []Named
	logg     *logger.Logger
}

func NewService(logg *logger.Logger, clearers ...Named) (*Service, error) {
	if len(clearers) == 0 {
		return nil, fmt.Errorf("at least one clearer required")
	}
	for _, c := range clearers {
		if c.Clearer == nil {
			return nil, fmt.Errorf("clearer %q is nil", c.Name)
		}
	}
	return &Service{clearers: clearers, logg: logg}, nil
}

// ClearUserData wipes cart, wishlist and discount state for userID. Every
// clearer runs even when an earlier one fails; failures are combined.
func (s *Service) ClearUserData(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	var errs error
	for _, c := range s.clearers {
		if err := c.Clearer.Clear(ctx, userID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	if errs != nil {
		if s.logg != nil {
			logCtx := s.logg.WithField(s.logg.WithUserID(ctx, userID), "failures", len(multierr.Errors(errs)))
			s.logg.Error(logCtx, "clear user data failed", errs)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "clear user data")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID), "user data cleared")
	}
	return nil
}
