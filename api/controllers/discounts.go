package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/api/validators"
	"github.com/elarose/storefront/internal/discounts"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/logger"
)

type discountCodeRequest struct {
	Code string `json:"code" validate:"required,max=40"`
}

// DiscountValidate checks a code against the caller's current cart without
// consuming a use.
func DiscountValidate(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		applied, err := svc.ValidateForCart(r.Context(), middleware.UserIDFromContext(r.Context()), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, applied)
	}
}

func DiscountApply(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload discountCodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		applied, err := svc.Apply(r.Context(), middleware.UserIDFromContext(r.Context()), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, applied)
	}
}

func DiscountCurrent(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applied, err := svc.Current(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"discount": applied})
	}
}

func DiscountRemove(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

type createDiscountRequest struct {
	Code           string          `json:"code" validate:"required,max=40"`
	Name           string          `json:"name" validate:"required,max=120"`
	Type           string          `json:"type" validate:"required,oneof=percentage fixed free_delivery"`
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	Categories     []string        `json:"categories" validate:"omitempty,dive,required"`
	UsageLimit     *int            `json:"usageLimit" validate:"omitempty,gte=1"`
	StartsAt       *time.Time      `json:"startsAt"`
	ExpiresAt      *time.Time      `json:"expiresAt"`
}

func AdminListDiscounts(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
		list, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]discounts.DiscountDTO, 0, len(list))
		for _, d := range list {
			out = append(out, discounts.ToDTO(d))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminCreateDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), discounts.CreateInput{
			Code:           payload.Code,
			Name:           payload.Name,
			Type:           enums.DiscountType(payload.Type),
			Value:          payload.Value,
			MinOrderAmount: payload.MinOrderAmount,
			Categories:     payload.Categories,
			UsageLimit:     payload.UsageLimit,
			StartsAt:       payload.StartsAt,
			ExpiresAt:      payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discounts.ToDTO(*created))
	}
}

func AdminDeactivateDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "active": false})
	}
}
