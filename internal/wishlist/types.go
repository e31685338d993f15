package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a saved product with the fields shown on the wishlist page.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Wishlist is the document stored in a user's wishlist slot. Items keep
// insertion order; membership is unique by product id.
type Wishlist struct {
	Items []Item `json:"items"`
}

func (w *Wishlist) IsEmpty() bool {
	return w == nil || len(w.Items) == 0
}

func (w *Wishlist) Contains(productID uuid.UUID) bool {
	return w.indexOf(productID) >= 0
}

func (w *Wishlist) indexOf(productID uuid.UUID) int {
	if w == nil {
		return -1
	}
	for i, item := range w.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (w *Wishlist) add(item Item) bool {
	if w.Contains(item.ProductID) {
		return false
	}
	w.Items = append(w.Items, item)
	return true
}

func (w *Wishlist) remove(productID uuid.UUID) bool {
	idx := w.indexOf(productID)
	if idx < 0 {
		return false
	}
	w.Items = append(w.Items[:idx], w.Items[idx+1:]...)
	return true
}

// StatusDTO is the batch membership answer keyed by product id.
type StatusDTO struct {
	Statuses map[string]bool `json:"statuses"`
}
