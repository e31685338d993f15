package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/slots"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/metrics"
)

// SlotKind is the slot namespace holding wishlists.
const SlotKind = "wishlist"

// maxStatusBatch bounds a single status lookup.
const maxStatusBatch = 200

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Slots    slots.KV
	TTL      time.Duration
	Products productLoader
	Metrics  *metrics.StorefrontMetrics
	Now      func() time.Time
}

// Service exposes wishlist membership for a signed-in user.
type Service interface {
	Toggle(ctx context.Context, userID string, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID string, productID uuid.UUID) error
	Remove(ctx context.Context, userID string, productID uuid.UUID) error
	Contains(ctx context.Context, userID string, productID uuid.UUID) (bool, error)
	List(ctx context.Context, userID string) ([]Item, error)
	Statuses(ctx context.Context, userID string, productIDs []uuid.UUID) (StatusDTO, error)
	Clear(ctx context.Context, userID string) error
}

type service struct {
	store    *slots.Store[Wishlist]
	products productLoader
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Slots == nil {
		return nil, fmt.Errorf("slot store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	store, err := slots.New[Wishlist](params.Slots, SlotKind, params.TTL)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{store: store, products: params.Products, metrics: params.Metrics, now: now}, nil
}

// Toggle flips membership and reports whether the product is now saved.
// The check and the write happen in one slot transaction, so concurrent
// toggles do not lose updates.
func (s *service) Toggle(ctx context.Context, userID string, productID uuid.UUID) (bool, error) {
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var (
		added    bool
		snapshot *Item
	)
	_, err := s.store.Update(ctx, userID, func(w *Wishlist) error {
		if w.remove(productID) {
			added = false
			return nil
		}
		if snapshot == nil {
			item, err := s.snapshot(ctx, productID)
			if err != nil {
				return err
			}
			snapshot = item
		}
		added = w.add(*snapshot)
		return nil
	})
	if err != nil {
		return false, err
	}
	s.metrics.WishlistChange(added)
	return added, nil
}

// Add is idempotent.
func (s *service) Add(ctx context.Context, userID string, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	item, err := s.snapshot(ctx, productID)
	if err != nil {
		return err
	}
	var added bool
	if _, err := s.store.Update(ctx, userID, func(w *Wishlist) error {
		added = w.add(*item)
		return nil
	}); err != nil {
		return err
	}
	if added {
		s.metrics.WishlistChange(true)
	}
	return nil
}

// Remove is idempotent.
func (s *service) Remove(ctx context.Context, userID string, productID uuid.UUID) error {
	var removed bool
	if _, err := s.store.Update(ctx, userID, func(w *Wishlist) error {
		removed = w.remove(productID)
		return nil
	}); err != nil {
		return err
	}
	if removed {
		s.metrics.WishlistChange(false)
	}
	return nil
}

func (s *service) Contains(ctx context.Context, userID string, productID uuid.UUID) (bool, error) {
	w, err := s.store.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

func (s *service) List(ctx context.Context, userID string) ([]Item, error) {
	w, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Items == nil {
		return []Item{}, nil
	}
	return w.Items, nil
}

// Statuses answers membership for many products with a single slot read.
func (s *service) Statuses(ctx context.Context, userID string, productIDs []uuid.UUID) (StatusDTO, error) {
	if len(productIDs) > maxStatusBatch {
		return StatusDTO{}, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d product ids per request", maxStatusBatch)
	}
	w, err := s.store.Load(ctx, userID)
	if err != nil {
		return StatusDTO{}, err
	}
	saved := make(map[uuid.UUID]struct{}, len(w.Items))
	for _, item := range w.Items {
		saved[item.ProductID] = struct{}{}
	}
	out := StatusDTO{Statuses: make(map[string]bool, len(productIDs))}
	for _, id := range productIDs {
		_, ok := saved[id]
		out.Statuses[id.String()] = ok
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

func (s *service) snapshot(ctx context.Context, productID uuid.UUID) (*Item, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	item := &Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.ImageURL,
		AddedAt:   s.now().UTC(),
	}
	if product.Category != nil {
		item.Category = product.Category.Slug
	}
	return item, nil
}
