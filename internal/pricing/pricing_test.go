package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/enums"
)

func testPolicy() Policy {
	return Policy{
		Currency:              "USD",
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.RequireFromString("9.99"),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_FixedDiscountScenario(t *testing.T) {
	policy := testPolicy()
	subtotal := dec("20") // one line, price 10, qty 2

	before := Compute(subtotal, nil, policy)
	if !before.Total.Equal(dec("31.59")) { // 20 + 1.60 tax + 9.99 shipping
		t.Fatalf("unexpected total before discount: %s", before.Total)
	}

	discount := &AppliedDiscount{Code: "FIVE", Type: enums.DiscountTypeFixed, Value: dec("5")}
	with := Compute(subtotal, discount, policy)
	if !with.Total.Equal(before.Total.Sub(dec("5"))) {
		t.Fatalf("expected total reduced by 5, got %s", with.Total)
	}
	if with.Applied == nil || !with.Applied.DiscountAmount.Equal(dec("5")) {
		t.Fatalf("expected applied discount amount 5, got %+v", with.Applied)
	}

	after := Compute(subtotal, nil, policy)
	if !after.Total.Equal(before.Total) {
		t.Fatalf("removing the discount must restore %s, got %s", before.Total, after.Total)
	}
}

func TestCompute_ShippingRules(t *testing.T) {
	policy := testPolicy()
	tests := []struct {
		name     string
		subtotal decimal.Decimal
		discount *AppliedDiscount
		free     bool
	}{
		{name: "below threshold", subtotal: dec("99.99"), free: false},
		{name: "at threshold", subtotal: dec("100"), free: true},
		{name: "free delivery code", subtotal: dec("10"), discount: &AppliedDiscount{Code: "SHIP", Type: enums.DiscountTypeFreeDelivery, FreeDelivery: true}, free: true},
		{name: "empty cart", subtotal: decimal.Zero, free: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Compute(tc.subtotal, tc.discount, policy)
			if q.FreeShipping != tc.free {
				t.Fatalf("expected free=%v, got %v", tc.free, q.FreeShipping)
			}
			if tc.free && !q.Shipping.IsZero() {
				t.Fatalf("free shipping must zero the fee, got %s", q.Shipping)
			}
			if !tc.free && !q.Shipping.Equal(dec("9.99")) {
				t.Fatalf("expected flat fee, got %s", q.Shipping)
			}
		})
	}
}

func TestAmountFor(t *testing.T) {
	pct := &AppliedDiscount{Code: "P10", Type: enums.DiscountTypePercentage, Value: dec("10")}
	if got := pct.AmountFor(dec("45.50")); !got.Equal(dec("4.55")) {
		t.Fatalf("expected 4.55, got %s", got)
	}
	fixed := &AppliedDiscount{Code: "BIG", Type: enums.DiscountTypeFixed, Value: dec("50")}
	if got := fixed.AmountFor(dec("30")); !got.Equal(dec("30")) {
		t.Fatalf("fixed discount must be capped at subtotal, got %s", got)
	}
	var none *AppliedDiscount
	if got := none.AmountFor(dec("30")); !got.IsZero() {
		t.Fatalf("nil discount should be zero, got %s", got)
	}
}

func TestCompute_TotalNeverNegative(t *testing.T) {
	policy := testPolicy()
	policy.TaxRate = decimal.Zero
	q := Compute(dec("200"), &AppliedDiscount{Code: "ALL", Type: enums.DiscountTypeFixed, Value: dec("500")}, policy)
	if q.Total.IsNegative() {
		t.Fatalf("total went negative: %s", q.Total)
	}
	if !q.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", q.Total)
	}
}
