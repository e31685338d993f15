package invoices

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elarose/storefront/internal/repo"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Save stores the invoice unless one already exists for the order. The
// first rendering wins so redelivered events keep the original document.
func (r *Repository) Save(ctx context.Context, invoice *models.Invoice) error {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(invoice).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save invoice")
	}
	return nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.DB(ctx).Where("order_id = ?", orderID).First(&invoice).Error; err != nil {
		return nil, repo.MapError(err, "invoice not found", "load invoice")
	}
	return &invoice, nil
}
