package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/outbox/payloads"
	"github.com/elarose/storefront/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Viewer is the caller reading or changing an order.
type Viewer struct {
	UserID  string
	IsAdmin bool
}

// Service exposes order history and admin fulfilment.
type Service interface {
	ListMine(ctx context.Context, userID string, params pagination.Params) (*List, error)
	Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*List, error)
	UpdateStatus(ctx context.Context, viewer Viewer, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
}

type ServiceParams struct {
	Repo      Repository
	DB        txRunner
	Outbox    outboxPublisher
	Inventory InventoryReleaser
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory InventoryReleaser
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	inventory := params.Inventory
	if inventory == nil {
		inventory = NewInventoryReleaser()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.DB,
		outbox:    params.Outbox,
		inventory: inventory,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID string, params pagination.Params) (*List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, ListFilters{UserID: userID}, params)
}

func (s *service) ListAll(ctx context.Context, filters ListFilters, params pagination.Params) (*List, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.Fields("invalid status filter", map[string]string{"status": "unknown status"})
	}
	return s.list(ctx, filters, params)
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (*List, error) {
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, err
	}
	out := &List{Orders: make([]Summary, 0, len(rows))}
	for _, row := range rows {
		out.Orders = append(out.Orders, toSummary(row))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

// Get returns the order to its owner or an admin. Other callers see
// NOT_FOUND so order ids cannot be guessed.
func (s *service) Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && order.UserID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := ToDTO(*order)
	return &dto, nil
}

// UpdateStatus applies an admin transition. Cancelling returns the order's
// units to stock in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, viewer Viewer, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !viewer.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.Fields("invalid status", map[string]string{"status": "unknown status"})
	}

	var result OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		current := order.Status
		if current == next {
			result = ToDTO(*order)
			return nil
		}
		if !current.CanTransitionTo(next) {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", current, next).
				WithDetails(map[string]any{"from": current, "to": next})
		}
		ok, err := repo.UpdateStatus(ctx, order.ID, current, next)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}

		if next == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		changedAt := s.now().UTC()
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: viewer.UserID, Role: string(enums.RoleAdmin)},
			OccurredAt:    changedAt,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:   order.ID,
				UserID:    order.UserID,
				From:      current,
				To:        next,
				ChangedBy: viewer.UserID,
				ChangedAt: changedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status change")
		}

		order.Status = next
		result = ToDTO(*order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithUserID(ctx, viewer.UserID), map[string]any{
			"order_id": orderID.String(),
			"status":   next,
		})
		s.logg.Info(logCtx, "order status updated")
	}
	return &result, nil
}

type inventoryReleaserImpl struct{}

// NewInventoryReleaser exposes the default inventory release implementation.
func NewInventoryReleaser() InventoryReleaser {
	return inventoryReleaserImpl{}
}

func (inventoryReleaserImpl) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}
	return catalog.NewRepository(tx).RestoreStock(ctx, productID, qty)
}
