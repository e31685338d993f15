package enums

import "fmt"

// DiscountType controls how a discount code reduces an order.
type DiscountType string

const (
	DiscountTypePercentage   DiscountType = "percentage"
	DiscountTypeFixed        DiscountType = "fixed"
	DiscountTypeFreeDelivery DiscountType = "free_delivery"
)

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFixed, DiscountTypeFreeDelivery:
		return true
	}
	return false
}

func ParseDiscountType(value string) (DiscountType, error) {
	dt := DiscountType(value)
	if !dt.IsValid() {
		return "", fmt.Errorf("invalid discount type %q", value)
	}
	return dt, nil
}
