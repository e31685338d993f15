package contacts

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/pagination"
)

// Input is a contact form submission.
type Input struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (in Input) normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	return in
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

func fieldErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contact form")
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		case "max":
			fields[fe.Field()] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return pkgerrors.Fields("invalid contact form", fields)
}

type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type List struct {
	Contacts   []ContactDTO `json:"contacts"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type Service interface {
	Create(ctx context.Context, input Input, clientIP string) (*ContactDTO, error)
	List(ctx context.Context, params pagination.Params) (*List, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contacts repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input Input, clientIP string) (*ContactDTO, error) {
	input = input.normalize()
	if err := validate.Struct(input); err != nil {
		return nil, fieldErrors(err)
	}

	contact := &models.Contact{
		Name:     input.Name,
		Email:    input.Email,
		Subject:  input.Subject,
		Message:  input.Message,
		ClientIP: clientIP,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "contact_id", contact.ID.String()), "contact form received")
	}
	dto := toDTO(*contact)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*List, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	out := &List{Contacts: make([]ContactDTO, 0, len(rows))}
	for _, row := range rows {
		out.Contacts = append(out.Contacts, toDTO(row))
	}
	if next != nil {
		out.NextCursor = pagination.EncodeCursor(*next)
	}
	return out, nil
}

func toDTO(c models.Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}
