package support

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elarose/storefront/internal/repo"
	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/pagination"
)

// ListFilters narrows support message listings.
type ListFilters struct {
	UserID string
	Status *enums.SupportStatus
}

type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, msg *models.SupportMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(msg).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create support message")
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupportMessage, error) {
	var msg models.SupportMessage
	if err := r.DB(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, repo.MapError(err, "support message not found", "load support message")
	}
	return &msg, nil
}

func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.SupportMessage, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.DB(ctx).Model(&models.SupportMessage{})
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SupportMessage
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list support messages")
	}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// UpdateStatus sets the status and, when reply is non-nil, the staff reply.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SupportStatus, reply *string) error {
	updates := map[string]any{"status": status}
	if reply != nil {
		updates["reply"] = *reply
	}
	res := r.DB(ctx).Model(&models.SupportMessage{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update support message")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "support message not found")
	}
	return nil
}
