package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elarose/storefront/internal/orders"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
)

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service renders and serves order invoices.
type Service interface {
	Generate(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
	Get(ctx context.Context, viewer orders.Viewer, orderID uuid.UUID) (*models.Invoice, error)
}

type ServiceParams struct {
	Repo   *Repository
	Orders orderLoader
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo   *Repository
	orders orderLoader
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, orders: params.Orders, logg: params.Logger, now: now}, nil
}

// Generate renders and stores the invoice for orderID. An existing invoice
// is returned unchanged.
func (s *service) Generate(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, order)
}

// Get serves the stored invoice to the order's owner or an admin, rendering
// it first when the worker has not done so yet.
func (s *service) Get(ctx context.Context, viewer orders.Viewer, orderID uuid.UUID) (*models.Invoice, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && order.UserID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.generate(ctx, order)
}

func (s *service) generate(ctx context.Context, order *models.Order) (*models.Invoice, error) {
	existing, err := s.repo.FindByOrderID(ctx, order.ID)
	if err == nil {
		return existing, nil
	}
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, err
	}

	html, err := Render(*order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice")
	}
	invoice := &models.Invoice{
		OrderID:    order.ID,
		Number:     Number(*order),
		HTML:       html,
		RenderedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":       order.ID.String(),
			"invoice_number": invoice.Number,
		})
		s.logg.Info(logCtx, "invoice rendered")
	}
	return s.repo.FindByOrderID(ctx, order.ID)
}
