package users

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elarose/storefront/internal/repo"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

// Repository persists the profile mirror.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Upsert inserts the profile or refreshes email, role and last_seen_at on an
// existing row. Display name and phone are left untouched on conflict.
func (r *Repository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	err := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "role", "last_seen_at", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert user profile")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.DB(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, repo.MapError(err, "user not found", "load user profile")
	}
	return &profile, nil
}

// UpdateContact writes the editable fields present in updates.
func (r *Repository) UpdateContact(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.DB(ctx).Model(&models.UserProfile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update user profile")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

// List returns one page of profiles ordered by most recently seen, plus the
// total row count.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]models.UserProfile, int64, error) {
	var total int64
	if err := r.DB(ctx).Model(&models.UserProfile{}).Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user profiles")
	}
	var rows []models.UserProfile
	err := r.DB(ctx).
		Order("last_seen_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user profiles")
	}
	return rows, total, nil
}
