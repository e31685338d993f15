package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/pkg/db/models"
	dbtypes "github.com/elarose/storefront/pkg/db/types"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service serves the storefront catalog.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProducts(ctx context.Context, query ListQuery) (ProductPage, error)
	GetProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	CreateReview(ctx context.Context, userID string, productID uuid.UUID, input ReviewInput) (*ReviewDTO, error)

	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
}

type ServiceParams struct {
	Repo        *Repository
	DB          txRunner
	Logger      *logger.Logger
	PageSize    int
	MaxPageSize int
}

type service struct {
	repo        *Repository
	db          txRunner
	logg        *logger.Logger
	pageSize    int
	maxPageSize int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}
	maxPageSize := params.MaxPageSize
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &service{
		repo:        params.Repo,
		db:          params.DB,
		logg:        params.Logger,
		pageSize:    pageSize,
		maxPageSize: maxPageSize,
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, categoryDTO(c))
	}
	return out, nil
}

// ListProducts fetches the active products of the optional category and runs
// the filter pipeline over them in memory.
func (s *service) ListProducts(ctx context.Context, query ListQuery) (ProductPage, error) {
	var categoryID *uuid.UUID
	if slug := strings.TrimSpace(query.CategorySlug); slug != "" {
		category, err := s.repo.FindCategoryBySlug(ctx, slug)
		if err != nil {
			return ProductPage{}, err
		}
		categoryID = &category.ID
	}

	state := query.State
	if state.PageSize <= 0 {
		state.PageSize = s.pageSize
	}
	if state.PageSize > s.maxPageSize {
		state.PageSize = s.maxPageSize
	}
	if state.Filter.MinPrice != nil && state.Filter.MaxPrice != nil && state.Filter.MinPrice.GreaterThan(*state.Filter.MaxPrice) {
		return ProductPage{}, pkgerrors.Fields("invalid price range", map[string]string{"minPrice": "must not exceed maxPrice"})
	}

	products, err := s.repo.ListActiveProducts(ctx, categoryID)
	if err != nil {
		return ProductPage{}, err
	}
	page := state.Run(products)

	items := make([]ProductDTO, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, productDTO(p))
	}
	return ProductPage{Items: items, PageInfo: page.PageInfo}, nil
}

func (s *service) GetProductDetail(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ProductDetail{ProductDTO: productDTO(*product), Reviews: make([]ReviewDTO, 0, len(reviews))}
	for _, r := range reviews {
		detail.Reviews = append(detail.Reviews, reviewDTO(r))
	}
	return detail, nil
}

// CreateReview stores the review and refreshes the product's cached rating
// in the same transaction.
func (s *service) CreateReview(ctx context.Context, userID string, productID uuid.UUID, input ReviewInput) (*ReviewDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.Fields("invalid review", map[string]string{"rating": "must be between 1 and 5"})
	}
	if _, err := s.GetProductDetail(ctx, productID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Author:    strings.TrimSpace(input.Author),
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateReview(ctx, review); err != nil {
			return err
		}
		_, _, err := txRepo.RefreshRating(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithUserID(ctx, userID), map[string]any{
			"product_id": productID.String(),
			"rating":     input.Rating,
		})
		s.logg.Info(logCtx, "review created")
	}
	dto := reviewDTO(*review)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	product := &models.Product{IsActive: true}
	applyProductInput(product, input)
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	created, err := s.repo.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	dto := productDTO(*created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProductInput(existing, input)
	if err := s.repo.UpdateProduct(ctx, existing); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := productDTO(*updated)
	return &dto, nil
}

func validateProduct(input ProductInput) error {
	fields := map[string]string{}
	if input.CategoryID == uuid.Nil {
		fields["categoryId"] = "required"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "required"
	}
	if !input.Price.IsPositive() {
		fields["price"] = "must be greater than zero"
	}
	if input.Stock < 0 {
		fields["stock"] = "must not be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.Fields("invalid product", fields)
	}
	return nil
}

func applyProductInput(p *models.Product, input ProductInput) {
	p.CategoryID = input.CategoryID
	p.Category = nil
	p.Name = strings.TrimSpace(input.Name)
	p.Description = strings.TrimSpace(input.Description)
	p.Price = input.Price.Round(2)
	p.ImageURL = strings.TrimSpace(input.ImageURL)
	p.Images = cleanList(input.Images)
	p.Sizes = cleanList(input.Sizes)
	p.Colors = cleanList(input.Colors)
	p.Stock = input.Stock
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}

func cleanList(values []string) dbtypes.StringList {
	out := dbtypes.StringList{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || out.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
