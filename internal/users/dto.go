package users

import (
	"time"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/pagination"
)

// ProfileDTO is the transport shape of a mirrored identity.
type ProfileDTO struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	IsAdmin     bool       `json:"isAdmin"`
	DisplayName string     `json:"displayName,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	LastSeenAt  time.Time  `json:"lastSeenAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UpdateInput carries the profile fields a user may edit.
type UpdateInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
}

type ProfilePage struct {
	Items []ProfileDTO `json:"items"`
	pagination.PageInfo
}

func FromModel(p *models.UserProfile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:          p.ID,
		Email:       p.Email,
		Role:        p.Role,
		IsAdmin:     p.Role.IsAdmin(),
		DisplayName: p.DisplayName,
		Phone:       p.Phone,
		LastSeenAt:  p.LastSeenAt,
		CreatedAt:   p.CreatedAt,
	}
}
