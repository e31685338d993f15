package discounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/repo"
	"github.com/elarose/storefront/pkg/db"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

var errAlreadyRedeemed = errors.New("discount already redeemed by user")

// Repository persists discount codes.
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

// FindByCode matches code case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.DB(ctx).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&discount).Error
	if err != nil {
		return nil, repo.MapError(err, "discount code not found", "load discount")
	}
	return &discount, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.DB(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, repo.MapError(err, "discount not found", "load discount")
	}
	return &discount, nil
}

func (r *Repository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID == uuid.Nil {
		discount.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(discount).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount")
	}
	return nil
}

// List returns discounts newest first.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Discount, error) {
	query := r.DB(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Discount
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	return rows, nil
}

func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Model(&models.Discount{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deactivate discount")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	return nil
}

// ConsumeUsage increments used_count in a single conditional UPDATE. It
// reports false when the code is inactive or its usage limit is reached.
func (r *Repository) ConsumeUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Model(&models.Discount{}).
		Where("id = ? AND is_active = ?", id, true).
		Where("(usage_limit IS NULL OR used_count < usage_limit)").
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "consume discount usage")
	}
	return res.RowsAffected == 1, nil
}

// DeactivateExhausted switches off active codes that expired before now or
// used up their limit.
func (r *Repository) DeactivateExhausted(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB(ctx).Model(&models.Discount{}).
		Where("is_active = ?", true).
		Where("((expires_at IS NOT NULL AND expires_at <= ?) OR (usage_limit IS NOT NULL AND used_count >= usage_limit))", now).
		Update("is_active", false)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deactivate exhausted discounts")
	}
	return res.RowsAffected, nil
}

// HasOpenRedemption reports whether userID already holds an unsettled usage
// of the discount.
func (r *Repository) HasOpenRedemption(ctx context.Context, discountID uuid.UUID, userID string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.DiscountRedemption{}).
		Where("discount_id = ? AND user_id = ? AND order_id IS NULL", discountID, userID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check discount redemption")
	}
	return count > 0, nil
}

// OpenRedemption consumes one usage and records it against userID. A
// concurrent open redemption for the same pair fails the unique index; run
// it inside a transaction so the usage increment rolls back with it.
func (r *Repository) OpenRedemption(ctx context.Context, discountID uuid.UUID, userID string) error {
	ok, err := r.ConsumeUsage(ctx, discountID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "discount code is no longer available")
	}
	redemption := &models.DiscountRedemption{ID: uuid.New(), DiscountID: discountID, UserID: userID}
	if err := r.DB(ctx).Create(redemption).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return errAlreadyRedeemed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record discount redemption")
	}
	return nil
}

// SettleRedemption ties userID's open redemption to orderID. Without an open
// redemption a fresh usage is consumed for the order.
func (r *Repository) SettleRedemption(ctx context.Context, discountID uuid.UUID, userID string, orderID uuid.UUID) error {
	res := r.DB(ctx).Model(&models.DiscountRedemption{}).
		Where("discount_id = ? AND user_id = ? AND order_id IS NULL", discountID, userID).
		Update("order_id", orderID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "settle discount redemption")
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := r.ConsumeUsage(ctx, discountID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "discount code is no longer available")
	}
	redemption := &models.DiscountRedemption{ID: uuid.New(), DiscountID: discountID, UserID: userID, OrderID: &orderID}
	if err := r.DB(ctx).Create(redemption).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record discount redemption")
	}
	return nil
}

// ReleaseRedemption drops userID's open redemption and gives its usage
// back in one transaction. It reports whether anything was released.
func (r *Repository) ReleaseRedemption(ctx context.Context, discountID uuid.UUID, userID string) (bool, error) {
	released := false
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("discount_id = ? AND user_id = ? AND order_id IS NULL", discountID, userID).
			Delete(&models.DiscountRedemption{})
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release discount redemption")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		err := tx.Model(&models.Discount{}).
			Where("id = ? AND used_count > 0", discountID).
			UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund discount usage")
		}
		released = true
		return nil
	})
	return released, err
}
