package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/identity"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/pagination"
)

const maxPageSize = 100

// Service mirrors identity-provider users into the local profile table.
type Service interface {
	Sync(ctx context.Context, who identity.Identity) (*ProfileDTO, error)
	Update(ctx context.Context, who identity.Identity, input UpdateInput) (*ProfileDTO, error)
	List(ctx context.Context, page, pageSize int) (*ProfilePage, error)
}

type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

// Sync records that who was seen now and returns the stored profile.
func (s *service) Sync(ctx context.Context, who identity.Identity) (*ProfileDTO, error) {
	if strings.TrimSpace(who.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	now := s.now().UTC()
	profile := &models.UserProfile{
		ID:         who.UserID,
		Email:      strings.ToLower(strings.TrimSpace(who.Email)),
		Role:       who.Role,
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	stored, err := s.repo.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	return FromModel(stored), nil
}

func (s *service) Update(ctx context.Context, who identity.Identity, input UpdateInput) (*ProfileDTO, error) {
	if _, err := s.Sync(ctx, who); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*input.DisplayName)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if err := s.repo.UpdateContact(ctx, who.UserID, updates); err != nil {
		return nil, err
	}
	if s.logg != nil && len(updates) > 0 {
		s.logg.Info(s.logg.WithUserID(ctx, who.UserID), "profile updated")
	}
	stored, err := s.repo.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	return FromModel(stored), nil
}

func (s *service) List(ctx context.Context, page, pageSize int) (*ProfilePage, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = pagination.DefaultLimit
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	rows, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := &ProfilePage{
		Items: make([]ProfileDTO, 0, len(rows)),
		PageInfo: pagination.PageInfo{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	}
	for i := range rows {
		out.Items = append(out.Items, *FromModel(&rows[i]))
	}
	return out, nil
}
