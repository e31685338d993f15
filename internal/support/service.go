package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/pagination"
)

type CreateInput struct {
	Subject string     `json:"subject" validate:"required,max=200"`
	Body    string     `json:"body" validate:"required,max=5000"`
	OrderID *uuid.UUID `json:"orderId,omitempty"`
}

type StatusInput struct {
	Status string  `json:"status" validate:"required,oneof=open answered closed"`
	Reply  *string `json:"reply,omitempty" validate:"omitempty,max=5000"`
}

type MessageDTO struct {
	ID        uuid.UUID           `json:"id"`
	UserID    string              `json:"userId"`
	Subject   string              `json:"subject"`
	Body      string              `json:"body"`
	OrderID   *uuid.UUID          `json:"orderId,omitempty"`
	Status    enums.SupportStatus `json:"status"`
	Reply     *string             `json:"reply,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type List struct {
	Messages   []MessageDTO `json:"messages"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type Service interface {
	Create(ctx context.Context, userID string, input CreateInput) (*MessageDTO, error)
	ListMine(ctx context.Context, userID string, params pagination.Params) (*List, error)
	ListAll(ctx context.Context, status *enums.SupportStatus, params pagination.Params) (*List, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*MessageDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("support repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, userID string, input CreateInput) (*MessageDTO, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to contact support")
	}
	msg := &models.SupportMessage{
		UserID:  userID,
		Subject: strings.TrimSpace(input.Subject),
		Body:    strings.TrimSpace(input.Body),
		OrderID: input.OrderID,
		Status:  enums.SupportStatusOpen,
	}
	fields := map[string]string{}
	if msg.Subject == "" {
		fields["subject"] = "is required"
	}
	if msg.Body == "" {
		fields["body"] = "is required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Fields("invalid support message", fields)
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(s.logg.WithUserID(ctx, userID), "support_id", msg.ID.String()), "support message created")
	}
	dto := toDTO(*msg)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID string, params pagination.Params) (*List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view support messages")
	}
	return s.list(ctx, ListFilters{UserID: userID}, params)
}

func (s *service) ListAll(ctx context.Context, status *enums.SupportStatus, params pagination.Params) (*List, error) {
	return s.list(ctx, ListFilters{Status: status}, params)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*MessageDTO, error) {
	status, err := enums.ParseSupportStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if err != nil {
		return nil, pkgerrors.Fields("invalid status", map[string]string{"status": "must be open, answered or closed"})
	}
	var reply *string
	if input.Reply != nil {
		trimmed := strings.TrimSpace(*input.Reply)
		reply = &trimmed
	}
	if status == enums.SupportStatusAnswered && (reply == nil || *reply == "") {
		return nil, pkgerrors.Fields("invalid status", map[string]string{"reply": "is required when answering"})
	}
	if err := s.repo.UpdateStatus(ctx, id, status, reply); err != nil {
		return nil, err
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*msg)
	return &dto, nil
}

func (s *service) list(ctx context.Context, filters ListFilters, params pagination.Params) (*List, error) {
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, err
	}
	out := &List{Messages: make([]MessageDTO, 0, len(rows))}
	for _, row := range rows {
		out.Messages = append(out.Messages, toDTO(row))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

func toDTO(m models.SupportMessage) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Subject:   m.Subject,
		Body:      m.Body,
		OrderID:   m.OrderID,
		Status:    m.Status,
		Reply:     m.Reply,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
