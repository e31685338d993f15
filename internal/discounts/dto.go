package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
)

// DiscountDTO is the admin view of a code.
type DiscountDTO struct {
	ID             uuid.UUID          `json:"id"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Type           enums.DiscountType `json:"type"`
	Value          decimal.Decimal    `json:"value"`
	MinOrderAmount decimal.Decimal    `json:"minOrderAmount"`
	Categories     []string           `json:"categories"`
	UsageLimit     *int               `json:"usageLimit,omitempty"`
	UsedCount      int                `json:"usedCount"`
	StartsAt       *time.Time         `json:"startsAt,omitempty"`
	ExpiresAt      *time.Time         `json:"expiresAt,omitempty"`
	Active         bool               `json:"active"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func ToDTO(d models.Discount) DiscountDTO {
	categories := []string(d.Categories)
	if categories == nil {
		categories = []string{}
	}
	return DiscountDTO{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Type:           d.Type,
		Value:          d.Value,
		MinOrderAmount: d.MinOrderAmount,
		Categories:     categories,
		UsageLimit:     d.UsageLimit,
		UsedCount:      d.UsedCount,
		StartsAt:       d.StartsAt,
		ExpiresAt:      d.ExpiresAt,
		Active:         d.IsActive,
		CreatedAt:      d.CreatedAt,
	}
}
