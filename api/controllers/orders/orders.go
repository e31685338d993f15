package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elarose/storefront/api/middleware"
	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/api/validators"
	"github.com/elarose/storefront/internal/checkout"
	"github.com/elarose/storefront/internal/checkout/helpers"
	"github.com/elarose/storefront/internal/invoices"
	internalorders "github.com/elarose/storefront/internal/orders"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/pagination"
)

// Place turns the caller's cart into a cash-on-delivery order. The shipping
// form is validated by the checkout service.
func Place(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form helpers.ShippingForm
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		who := middleware.IdentityFromContext(r.Context())
		order, err := svc.PlaceOrder(r.Context(), checkout.Customer{UserID: who.UserID, Email: who.Email}, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListMine returns the caller's orders, newest first.
func ListMine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Get(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), viewerFrom(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type invoiceResponse struct {
	OrderID    uuid.UUID `json:"orderId"`
	Number     string    `json:"number"`
	HTML       string    `json:"html"`
	RenderedAt time.Time `json:"renderedAt"`
}

// Invoice serves the rendered invoice. `?format=html` returns the document
// itself instead of the JSON envelope.
func Invoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Get(r.Context(), viewerFrom(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.EqualFold(r.URL.Query().Get("format"), "html") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(invoice.HTML))
			return
		}
		responses.WriteSuccess(w, invoiceResponse{
			OrderID:    invoice.OrderID,
			Number:     invoice.Number,
			HTML:       invoice.HTML,
			RenderedAt: invoice.RenderedAt,
		})
	}
}

// AdminList returns every order, optionally filtered by status or user.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := internalorders.ListFilters{UserID: strings.TrimSpace(r.URL.Query().Get("userId"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Fields("invalid status filter", map[string]string{"status": "unknown status"}))
				return
			}
			filters.Status = &status
		}
		list, err := svc.ListAll(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), viewerFrom(r), orderID, enums.OrderStatus(strings.ToLower(strings.TrimSpace(payload.Status))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func viewerFrom(r *http.Request) internalorders.Viewer {
	who := middleware.IdentityFromContext(r.Context())
	return internalorders.Viewer{UserID: who.UserID, IsAdmin: who.IsAdmin()}
}

func parsePage(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
