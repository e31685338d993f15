package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/repo"
	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

// Repository persists categories, products and reviews.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.DB(ctx).Order("sort_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB(ctx).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&category).Error
	if err != nil {
		return nil, repo.MapError(err, "category not found", "load category")
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return nil
}

// GetProduct loads a product with its category.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		return nil, repo.MapError(err, "product not found", "load product")
	}
	return &product, nil
}

// ListActiveProducts returns active products newest first, optionally
// limited to one category.
func (r *Repository) ListActiveProducts(ctx context.Context, categoryID *uuid.UUID) ([]models.Product, error) {
	query := r.DB(ctx).Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.DB(ctx).Omit("Category").Create(product).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("category_id", "name", "description", "price", "image_url", "images", "sizes", "colors", "stock", "is_active").
		Updates(product)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update product")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// ReserveStock decrements stock when at least qty units remain. It reports
// false when the product is inactive or short.
func (r *Repository) ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock >= ?", productID, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	err := r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
	}
	return nil
}

func (r *Repository) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var rows []models.Review
	err := r.DB(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return rows, nil
}

func (r *Repository) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(review).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return nil
}

type ratingAggregate struct {
	Average float64
	Count   int
}

// RefreshRating recomputes the cached average and count from the reviews.
func (r *Repository) RefreshRating(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	var agg ratingAggregate
	err := r.DB(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	err = r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"average_rating": agg.Average,
			"review_count":   agg.Count,
		}).Error
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
	}
	return agg.Average, agg.Count, nil
}
