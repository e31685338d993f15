package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/elarose/storefront/pkg/db/types"
	"github.com/elarose/storefront/pkg/enums"
)

// Discount is a promo code customers attach to their cart.
type Discount struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex"`
	Name           string             `gorm:"column:name;not null"`
	Type           enums.DiscountType `gorm:"column:type;not null"`
	Value          decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	MinOrderAmount decimal.Decimal    `gorm:"column:min_order_amount;type:numeric(12,2);not null"`
	Categories     dbtypes.StringList `gorm:"column:categories;not null"`
	UsageLimit     *int               `gorm:"column:usage_limit"`
	UsedCount      int                `gorm:"column:used_count;not null;default:0"`
	StartsAt       *time.Time         `gorm:"column:starts_at"`
	ExpiresAt      *time.Time         `gorm:"column:expires_at"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// DiscountRedemption is one usage of a code held by a user. It stays open
// (no order) while the code sits on the cart and closes when an order
// settles it. A user holds at most one open redemption per code.
type DiscountRedemption struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DiscountID uuid.UUID  `gorm:"column:discount_id;type:uuid;not null;uniqueIndex:idx_discount_redemptions_open,where:order_id IS NULL"`
	UserID     string     `gorm:"column:user_id;not null;uniqueIndex:idx_discount_redemptions_open,where:order_id IS NULL"`
	OrderID    *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
