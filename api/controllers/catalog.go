package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/api/validators"
	"github.com/elarose/storefront/internal/catalog"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
)

const maxSearchLength = 100

func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogProducts lists active products. Query: category, minPrice,
// maxPrice, search, size, color, sort, page, pageSize.
func CatalogProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseProductQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListProducts(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseProductQuery(r *http.Request) (catalog.ListQuery, error) {
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return catalog.ListQuery{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return catalog.ListQuery{}, err
	}
	order, err := enums.ParseProductSort(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return catalog.ListQuery{}, pkgerrors.Fields("invalid sort", map[string]string{"sort": "unsupported value"})
	}
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
	if err != nil {
		return catalog.ListQuery{}, err
	}
	pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, 100)
	if err != nil {
		return catalog.ListQuery{}, err
	}

	state := catalog.NewFilterState(pageSize).
		WithFilter(catalog.Filter{
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Search:   validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLength),
			Sizes:    validators.ParseQueryList(r, "size"),
			Colors:   validators.ParseQueryList(r, "color"),
		}).
		WithSort(order).
		WithPage(page)
	return catalog.ListQuery{
		CategorySlug: strings.TrimSpace(r.URL.Query().Get("category")),
		State:        state,
	}, nil
}

func CatalogProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetProductDetail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

func CatalogCreateReview(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who := middleware.IdentityFromContext(r.Context())
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload reviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.CreateReview(r.Context(), who.UserID, id, catalog.ReviewInput{
			Rating:  payload.Rating,
			Comment: strings.TrimSpace(payload.Comment),
			Author:  authorName(who.Email),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// authorName shows the local part of the reviewer's email.
func authorName(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	if email == "" {
		return "customer"
	}
	return email
}

type productRequest struct {
	CategoryID  uuid.UUID       `json:"categoryId" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image" validate:"omitempty,url"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
	Sizes       []string        `json:"sizes" validate:"omitempty,dive,required,max=20"`
	Colors      []string        `json:"colors" validate:"omitempty,dive,required,max=40"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"isActive"`
}

func (p productRequest) toInput() (catalog.ProductInput, error) {
	if !p.Price.IsPositive() {
		return catalog.ProductInput{}, pkgerrors.Fields("validation failed", map[string]string{"price": "must be greater than 0"})
	}
	return catalog.ProductInput{
		CategoryID:  p.CategoryID,
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Images:      p.Images,
		Sizes:       p.Sizes,
		Colors:      p.Colors,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
	}, nil
}

func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
