// Package repo holds the pieces every gorm-backed repository embeds.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/elarose/storefront/pkg/db"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

// Base wraps the connection a repository reads and writes through. It is
// either the pool or a transaction handed in by a service.
type Base struct {
	db *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the connection scoped to ctx. A nil ctx returns it unscoped.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tx returns a copy of b that runs on tx.
func (b Base) Tx(tx *gorm.DB) Base {
	return Base{db: tx}
}

// MapError converts a gorm failure into a typed error. Missing rows become
// NOT_FOUND with notFoundMsg, unique violations CONFLICT, and everything else
// a DEPENDENCY failure labelled op. Typed errors pass through untouched.
func MapError(err error, notFoundMsg, op string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+": already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}
