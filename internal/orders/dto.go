package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
)

// ListFilters narrow the admin order list.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID string
}

// ShippingDTO is the delivery block of an order.
type ShippingDTO struct {
	FullName   string  `json:"fullName"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	Notes      *string `json:"notes,omitempty"`
}

type ItemDTO struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	Image       string          `json:"image,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// OrderDTO is the full order returned to its owner or an admin.
type OrderDTO struct {
	ID             uuid.UUID           `json:"id"`
	UserID         string              `json:"userId"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentMethod  enums.PaymentMethod `json:"paymentMethod"`
	Shipping       ShippingDTO         `json:"shipping"`
	Items          []ItemDTO           `json:"items"`
	Currency       string              `json:"currency"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Tax            decimal.Decimal     `json:"tax"`
	ShippingFee    decimal.Decimal     `json:"shippingFee"`
	DiscountCode   *string             `json:"discountCode,omitempty"`
	DiscountAmount decimal.Decimal     `json:"discountAmount"`
	Total          decimal.Decimal     `json:"total"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// Summary is one row of an order list.
type Summary struct {
	ID        uuid.UUID         `json:"id"`
	UserID    string            `json:"userId"`
	Status    enums.OrderStatus `json:"status"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
	Currency  string            `json:"currency"`
	CreatedAt time.Time         `json:"createdAt"`
}

// List wraps a page of orders plus the next page cursor.
type List struct {
	Orders     []Summary `json:"orders"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

// ToDTO converts a stored order with its items.
func ToDTO(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Shipping: ShippingDTO{
			FullName:   o.FullName,
			Email:      o.Email,
			Phone:      o.Phone,
			Address:    o.Address,
			City:       o.City,
			PostalCode: o.PostalCode,
			Country:    o.Country,
			Notes:      o.Notes,
		},
		Items:          make([]ItemDTO, 0, len(o.Items)),
		Currency:       o.Currency,
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		ShippingFee:    o.ShippingFee,
		DiscountCode:   o.DiscountCode,
		DiscountAmount: o.DiscountAmount,
		Total:          o.Total,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Image:       item.ImageURL,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Size:        item.Size,
			Color:       item.Color,
			LineTotal:   item.LineTotal,
		})
	}
	return dto
}

func toSummary(o models.Order) Summary {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return Summary{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		ItemCount: count,
		Total:     o.Total,
		Currency:  o.Currency,
		CreatedAt: o.CreatedAt,
	}
}
