package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/enums"
)

// OrderPlacedEvent is emitted when checkout commits an order.
type OrderPlacedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	UserID       string          `json:"user_id"`
	Email        string          `json:"email"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	DiscountCode *string         `json:"discount_code,omitempty"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// OrderStatusChangedEvent is emitted on every admin status transition.
type OrderStatusChangedEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	UserID    string            `json:"user_id"`
	From      enums.OrderStatus `json:"from"`
	To        enums.OrderStatus `json:"to"`
	ChangedBy string            `json:"changed_by"`
	ChangedAt time.Time         `json:"changed_at"`
}

// DiscountRedeemedEvent records that a customer consumed a code.
type DiscountRedeemedEvent struct {
	DiscountID uuid.UUID       `json:"discount_id"`
	Code       string          `json:"code"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	RedeemedAt time.Time       `json:"redeemed_at"`
}
