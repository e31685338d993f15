package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/internal/checkout/helpers"
	"github.com/elarose/storefront/internal/checkout/reservation"
	"github.com/elarose/storefront/internal/orders"
	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/metrics"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Load(ctx context.Context, userID string) (cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// discountSettler re-checks the attached code against the cart and settles
// its usage on the order inside the checkout transaction.
type discountSettler interface {
	Resolve(ctx context.Context, userID string, c cart.Cart) (*pricing.AppliedDiscount, error)
	Redeem(ctx context.Context, tx *gorm.DB, userID string, applied pricing.AppliedDiscount, orderID uuid.UUID) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Customer is the signed-in buyer placing the order.
type Customer struct {
	UserID string
	Email  string
}

// Service places cash-on-delivery orders from the customer's cart.
type Service interface {
	PlaceOrder(ctx context.Context, customer Customer, form helpers.ShippingForm) (*orders.OrderDTO, error)
}

type ServiceParams struct {
	DB        txRunner
	Carts     cartStore
	Discounts discountSettler
	Orders    orders.Repository
	Catalog   *catalog.Repository
	Outbox    outboxPublisher
	Policy    pricing.Policy
	Logger    *logger.Logger
	Metrics   *metrics.StorefrontMetrics
	Now       func() time.Time
}

type service struct {
	tx        txRunner
	carts     cartStore
	discounts discountSettler
	orders    orders.Repository
	catalog   *catalog.Repository
	outbox    outboxPublisher
	policy    pricing.Policy
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	now       func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount settler required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:        params.DB,
		carts:     params.Carts,
		discounts: params.Discounts,
		orders:    params.Orders,
		catalog:   params.Catalog,
		outbox:    params.Outbox,
		policy:    params.Policy,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

// PlaceOrder reserves stock, writes the order and its order_placed event in
// one transaction, then clears the cart and its discount.
func (s *service) PlaceOrder(ctx context.Context, customer Customer, form helpers.ShippingForm) (*orders.OrderDTO, error) {
	if strings.TrimSpace(customer.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	form = form.Normalize()
	if err := helpers.ValidateShipping(form); err != nil {
		return nil, err
	}

	current, err := s.carts.Load(ctx, customer.UserID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	// A code that stopped qualifying rejects the order so the buyer sees the
	// new total before confirming.
	applied, err := s.discounts.Resolve(ctx, customer.UserID, current)
	if err != nil {
		return nil, err
	}
	quote := pricing.Compute(current.Total(), applied, s.policy)
	order := buildOrder(customer.UserID, form, current, quote)
	order.ID = uuid.New()
	order.CreatedAt = s.now().UTC()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productIDs, quantities := helpers.QuantitiesByProduct(current.Items)
		requests := make([]reservation.InventoryReservationRequest, 0, len(productIDs))
		for _, id := range productIDs {
			requests = append(requests, reservation.InventoryReservationRequest{ProductID: id, Qty: quantities[id]})
		}
		results, err := reservation.ReserveInventory(ctx, s.catalog.WithTx(tx), requests)
		if err != nil {
			return err
		}
		if shortages := reservation.Shortages(results); len(shortages) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"products": shortages})
		}

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if applied != nil {
			if err := s.discounts.Redeem(ctx, tx, customer.UserID, *applied, order.ID); err != nil {
				return err
			}
		}
		return s.emitOrderPlaced(ctx, tx, customer, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced()
	if err := s.carts.Clear(ctx, customer.UserID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"user_id": customer.UserID, "error": err.Error()}), "order placed but cart not cleared")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithUserID(ctx, customer.UserID), map[string]any{
			"order_id": order.ID.String(),
			"total":    order.Total.StringFixed(2),
		})
		s.logg.Info(logCtx, "order placed")
	}

	placed, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	dto := orders.ToDTO(*placed)
	return &dto, nil
}

func (s *service) emitOrderPlaced(ctx context.Context, tx *gorm.DB, customer Customer, order *models.Order) error {
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: customer.UserID, Role: string(enums.RoleCustomer)},
		OccurredAt:    order.CreatedAt,
		Data: payloads.OrderPlacedEvent{
			OrderID:      order.ID,
			UserID:       order.UserID,
			Email:        order.Email,
			ItemCount:    itemCount,
			Total:        order.Total,
			Currency:     order.Currency,
			DiscountCode: order.DiscountCode,
			PlacedAt:     order.CreatedAt,
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed")
	}
	return nil
}

func buildOrder(userID string, form helpers.ShippingForm, c cart.Cart, quote pricing.Quote) *models.Order {
	order := &models.Order{
		UserID:         userID,
		Status:         enums.OrderStatusPending,
		PaymentMethod:  enums.PaymentMethodCashOnDelivery,
		FullName:       form.FullName,
		Email:          form.Email,
		Phone:          form.Phone,
		Address:        form.Address,
		City:           form.City,
		PostalCode:     form.PostalCode,
		Country:        form.Country,
		Notes:          form.Notes,
		Currency:       quote.Currency,
		Subtotal:       quote.Subtotal,
		Tax:            quote.Tax,
		ShippingFee:    quote.Shipping,
		DiscountAmount: quote.Discount,
		Total:          quote.Total,
		Items:          helpers.BuildOrderItems(c.Items),
	}
	if quote.Applied != nil {
		code := quote.Applied.Code
		order.DiscountCode = &code
	}
	return order
}
