package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/api/validators"
	cartsvc "github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size" validate:"omitempty,max=20"`
	Color     string    `json:"color" validate:"omitempty,max=40"`
	Quantity  int       `json:"quantity" validate:"omitempty,gte=1,lte=99"`
}

type updateCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity" validate:"gte=0,lte=99"`
}

type removeCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

// CartFetch returns the signed-in user's priced cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a product variant, merging with an existing line. A
// missing quantity means one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}
		view, err := svc.AddToCart(r.Context(), middleware.UserIDFromContext(r.Context()), cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Color:     payload.Color,
			Quantity:  quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateItem sets a line's quantity; zero removes the line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variant := cartsvc.Variant{Size: payload.Size, Color: payload.Color}
		view, err := svc.UpdateQuantity(r.Context(), middleware.UserIDFromContext(r.Context()), payload.ProductID, variant, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload removeCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variant := cartsvc.Variant{Size: payload.Size, Color: payload.Color}
		view, err := svc.RemoveFromCart(r.Context(), middleware.UserIDFromContext(r.Context()), payload.ProductID, variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
