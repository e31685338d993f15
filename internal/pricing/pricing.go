// Package pricing turns a cart subtotal and an attached discount into the
// totals shown at checkout.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/config"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/types"
)

// Policy is the store-wide tax and shipping configuration.
type Policy struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

func PolicyFromConfig(cfg config.StorefrontConfig) Policy {
	return Policy{
		Currency:              cfg.Currency,
		TaxRate:               cfg.TaxRateDecimal(),
		FreeShippingThreshold: cfg.FreeShippingThresholdDecimal(),
		ShippingFee:           cfg.ShippingFeeDecimal(),
	}
}

// AppliedDiscount is the discount state attached to a user's cart.
type AppliedDiscount struct {
	DiscountID     uuid.UUID          `json:"discountId"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Type           enums.DiscountType `json:"type"`
	Value          decimal.Decimal    `json:"value"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	FreeDelivery   bool               `json:"freeDelivery"`
	AppliedAt      time.Time          `json:"appliedAt"`
}

// IsEmpty lets the slot store drop a cleared discount.
func (d *AppliedDiscount) IsEmpty() bool {
	return d == nil || d.Code == ""
}

// AmountFor returns the reduction the discount grants on subtotal, never
// more than subtotal itself.
func (d *AppliedDiscount) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	if d.IsEmpty() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Type {
	case enums.DiscountTypePercentage:
		amount = types.RoundMoney(subtotal.Mul(d.Value).Div(decimal.NewFromInt(100)))
	case enums.DiscountTypeFixed:
		amount = d.Value
	case enums.DiscountTypeFreeDelivery:
		amount = decimal.Zero
	default:
		amount = d.DiscountAmount
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Quote is the priced view of a cart.
type Quote struct {
	Currency     string           `json:"currency"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Tax          decimal.Decimal  `json:"tax"`
	Shipping     decimal.Decimal  `json:"shipping"`
	Discount     decimal.Decimal  `json:"discount"`
	Total        decimal.Decimal  `json:"total"`
	FreeShipping bool             `json:"freeShipping"`
	Applied      *AppliedDiscount `json:"appliedDiscount,omitempty"`
}

// Compute prices subtotal under policy. Shipping is free when the subtotal
// reaches the threshold or the discount grants free delivery. An empty cart
// is never charged shipping.
func Compute(subtotal decimal.Decimal, discount *AppliedDiscount, policy Policy) Quote {
	subtotal = types.RoundMoney(subtotal)
	tax := types.RoundMoney(subtotal.Mul(policy.TaxRate))

	freeDelivery := discount != nil && !discount.IsEmpty() && discount.FreeDelivery
	freeShipping := !subtotal.IsPositive() ||
		subtotal.GreaterThanOrEqual(policy.FreeShippingThreshold) ||
		freeDelivery

	shipping := types.RoundMoney(policy.ShippingFee)
	if freeShipping {
		shipping = decimal.Zero
	}

	var applied *AppliedDiscount
	discountAmount := decimal.Zero
	if discount != nil && !discount.IsEmpty() {
		discountAmount = discount.AmountFor(subtotal)
		snapshot := *discount
		snapshot.DiscountAmount = discountAmount
		applied = &snapshot
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Currency:     policy.Currency,
		Subtotal:     subtotal,
		Tax:          tax,
		Shipping:     shipping,
		Discount:     discountAmount,
		Total:        types.RoundMoney(total),
		FreeShipping: freeShipping,
		Applied:      applied,
	}
}
