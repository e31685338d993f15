package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/elarose/storefront/pkg/db/types"
)

// Category groups products on the storefront navigation.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	ImageURL    string    `gorm:"column:image_url"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Product is a sellable clothing item. Sizes and colors are the variant axes.
type Product struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID    uuid.UUID          `gorm:"column:category_id;type:uuid;not null;index"`
	Category      *Category          `gorm:"foreignKey:CategoryID"`
	Name          string             `gorm:"column:name;not null"`
	Description   string             `gorm:"column:description"`
	Price         decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL      string             `gorm:"column:image_url"`
	Images        dbtypes.StringList `gorm:"column:images;not null"`
	Sizes         dbtypes.StringList `gorm:"column:sizes;not null"`
	Colors        dbtypes.StringList `gorm:"column:colors;not null"`
	Stock         int                `gorm:"column:stock;not null;default:0"`
	AverageRating float64            `gorm:"column:average_rating;type:numeric(3,2);not null;default:0"`
	ReviewCount   int                `gorm:"column:review_count;not null;default:0"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// Review is a customer rating of a product.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	UserID    string    `gorm:"column:user_id;not null"`
	Author    string    `gorm:"column:author"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
