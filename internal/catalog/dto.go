package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/pagination"
)

type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
}

type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Category      string          `json:"category,omitempty"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	Images        []string        `json:"images"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	Stock         int             `json:"stock"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	IsActive      bool            `json:"isActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    string    `json:"userId"`
	Author    string    `json:"author,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductDetail is a product with its reviews, newest first.
type ProductDetail struct {
	ProductDTO
	Reviews []ReviewDTO `json:"reviews"`
}

// ProductPage is one page of the filtered, sorted catalog.
type ProductPage struct {
	Items []ProductDTO `json:"items"`
	pagination.PageInfo
}

// ListQuery is the parsed /api/products query.
type ListQuery struct {
	CategorySlug string
	State        FilterState
}

type ReviewInput struct {
	Rating  int
	Comment string
	Author  string
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Images      []string
	Sizes       []string
	Colors      []string
	Stock       int
	IsActive    *bool
}

func categoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
		Image:       c.ImageURL,
	}
}

func productDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Image:         p.ImageURL,
		Images:        nonNil(p.Images),
		Sizes:         nonNil(p.Sizes),
		Colors:        nonNil(p.Colors),
		Stock:         p.Stock,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
	if p.Category != nil {
		dto.Category = p.Category.Slug
	}
	return dto
}

func reviewDTO(r models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Author:    r.Author,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
