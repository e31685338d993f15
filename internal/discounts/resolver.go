package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

// Resolver prices the discount attached to a cart against the code's
// current rules. Cart views and checkout read the discount through it, so a
// code that expired, was switched off or no longer fits the cart stops
// reducing the total.
type Resolver struct {
	repo  *Repository
	state *StateStore
	now   func() time.Time
}

func NewResolver(repo *Repository, state *StateStore, now func() time.Time) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if state == nil {
		return nil, fmt.Errorf("discount state store required")
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{repo: repo, state: state, now: now}, nil
}

// Resolve returns the attached discount re-priced for c, or nil when none is
// attached. A code that no longer qualifies returns a validation error naming
// the rule it broke.
func (r *Resolver) Resolve(ctx context.Context, userID string, c cart.Cart) (*pricing.AppliedDiscount, error) {
	attached, err := r.state.Current(ctx, userID)
	if err != nil || attached == nil || c.IsEmpty() {
		return nil, err
	}
	discount, err := r.lookup(ctx, *attached)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "discount code %s no longer exists", attached.Code)
	}
	if err != nil {
		return nil, err
	}
	holds, err := r.repo.HasOpenRedemption(ctx, discount.ID, userID)
	if err != nil {
		return nil, err
	}
	applied, err := evaluate(discount, c.Total(), c.Categories(), r.now().UTC(), holds)
	if err != nil {
		return nil, err
	}
	applied.AppliedAt = attached.AppliedAt
	return &applied, nil
}

// Redeem settles the discount on orderID inside the checkout transaction.
func (r *Resolver) Redeem(ctx context.Context, tx *gorm.DB, userID string, applied pricing.AppliedDiscount, orderID uuid.UUID) error {
	return r.repo.WithTx(tx).SettleRedemption(ctx, applied.DiscountID, userID, orderID)
}

// Remove detaches the discount and gives back the usage it held.
func (r *Resolver) Remove(ctx context.Context, userID string) error {
	attached, err := r.state.Current(ctx, userID)
	if err != nil {
		return err
	}
	if attached != nil {
		if err := r.release(ctx, *attached, userID); err != nil {
			return err
		}
	}
	return r.state.Remove(ctx, userID)
}

// Clear satisfies the session clearer contract.
func (r *Resolver) Clear(ctx context.Context, userID string) error {
	return r.Remove(ctx, userID)
}

func (r *Resolver) release(ctx context.Context, attached pricing.AppliedDiscount, userID string) error {
	id := attached.DiscountID
	if id == uuid.Nil {
		discount, err := r.repo.FindByCode(ctx, attached.Code)
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		id = discount.ID
	}
	_, err := r.repo.ReleaseRedemption(ctx, id, userID)
	return err
}

func (r *Resolver) lookup(ctx context.Context, attached pricing.AppliedDiscount) (*models.Discount, error) {
	if attached.DiscountID != uuid.Nil {
		return r.repo.FindByID(ctx, attached.DiscountID)
	}
	return r.repo.FindByCode(ctx, attached.Code)
}
