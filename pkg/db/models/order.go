package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/enums"
)

// Order is a placed cash-on-delivery order.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID         string              `gorm:"column:user_id;not null;index"`
	Status         enums.OrderStatus   `gorm:"column:status;not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	FullName       string              `gorm:"column:full_name;not null"`
	Email          string              `gorm:"column:email;not null"`
	Phone          string              `gorm:"column:phone;not null"`
	Address        string              `gorm:"column:address;not null"`
	City           string              `gorm:"column:city;not null"`
	PostalCode     string              `gorm:"column:postal_code;not null"`
	Country        string              `gorm:"column:country;not null"`
	Notes          *string             `gorm:"column:notes"`
	Currency       string              `gorm:"column:currency;not null"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax            decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null"`
	ShippingFee    decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	DiscountCode   *string             `gorm:"column:discount_code"`
	DiscountAmount decimal.Decimal     `gorm:"column:discount_amount;type:numeric(12,2);not null"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one reshaped cart line on an order.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	ImageURL    string          `gorm:"column:image_url"`
	Size        string          `gorm:"column:size"`
	Color       string          `gorm:"column:color"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

// Invoice is the rendered document for an order.
type Invoice struct {
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;primaryKey"`
	Number     string    `gorm:"column:number;not null;uniqueIndex"`
	HTML       string    `gorm:"column:html;not null"`
	RenderedAt time.Time `gorm:"column:rendered_at;not null"`
}
