package discounts

import (
	"context"
	"time"

	"github.com/elarose/storefront/internal/pricing"
	"github.com/elarose/storefront/internal/slots"
)

// SlotKind is the slot namespace holding the applied discount.
const SlotKind = "discount"

// StateStore keeps the discount attached to each user's cart.
type StateStore struct {
	store *slots.Store[pricing.AppliedDiscount]
}

func NewStateStore(kv slots.KV, ttl time.Duration) (*StateStore, error) {
	store, err := slots.New[pricing.AppliedDiscount](kv, SlotKind, ttl)
	if err != nil {
		return nil, err
	}
	return &StateStore{store: store}, nil
}

// Current returns nil when no discount is attached.
func (s *StateStore) Current(ctx context.Context, userID string) (*pricing.AppliedDiscount, error) {
	state, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, nil
	}
	return &state, nil
}

func (s *StateStore) Save(ctx context.Context, userID string, state pricing.AppliedDiscount) error {
	return s.store.Save(ctx, userID, state)
}

// Attach stores next in one optimistic slot transaction and returns what it
// replaced, or nil.
func (s *StateStore) Attach(ctx context.Context, userID string, next pricing.AppliedDiscount) (*pricing.AppliedDiscount, error) {
	var previous pricing.AppliedDiscount
	_, err := s.store.Update(ctx, userID, func(state *pricing.AppliedDiscount) error {
		previous = *state
		*state = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous.IsEmpty() {
		return nil, nil
	}
	return &previous, nil
}

// Remove is idempotent.
func (s *StateStore) Remove(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}

// Clear satisfies the session clearer contract.
func (s *StateStore) Clear(ctx context.Context, userID string) error {
	return s.Remove(ctx, userID)
}
