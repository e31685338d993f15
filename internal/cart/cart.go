package cart

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/types"
)

// Variant distinguishes selections of the same product.
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

func (v Variant) normalized() Variant {
	return Variant{Size: strings.TrimSpace(v.Size), Color: strings.TrimSpace(v.Color)}
}

// Matches compares variants ignoring case and surrounding space.
func (v Variant) Matches(other Variant) bool {
	a, b := v.normalized(), other.normalized()
	return strings.EqualFold(a.Size, b.Size) && strings.EqualFold(a.Color, b.Color)
}

// LineItem is one cart entry. Name, price and image are snapshotted from the
// catalog when the line is first added.
type LineItem struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category,omitempty"`
	Size     string          `json:"size,omitempty"`
	Color    string          `json:"color,omitempty"`
	Quantity int             `json:"quantity"`
}

func (l LineItem) Variant() Variant {
	return Variant{Size: l.Size, Color: l.Color}
}

func (l LineItem) LineTotal() decimal.Decimal {
	return types.RoundMoney(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Cart is the document stored in a user's cart slot.
type Cart struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) indexOf(id uuid.UUID, variant Variant) int {
	for i, item := range c.Items {
		if item.ID == id && item.Variant().Matches(variant) {
			return i
		}
	}
	return -1
}

// Add merges item into the matching line or appends a new one. A quantity
// below one is treated as one.
func (c *Cart) Add(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if idx := c.indexOf(item.ID, item.Variant()); idx >= 0 {
		c.Items[idx].Quantity += item.Quantity
		return
	}
	v := item.Variant().normalized()
	item.Size, item.Color = v.Size, v.Color
	c.Items = append(c.Items, item)
}

// SetQuantity updates the matching line, removing it when quantity < 1.
// It reports whether a line matched.
func (c *Cart) SetQuantity(id uuid.UUID, variant Variant, quantity int) bool {
	idx := c.indexOf(id, variant)
	if idx < 0 {
		return false
	}
	if quantity < 1 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		return true
	}
	c.Items[idx].Quantity = quantity
	return true
}

// Remove deletes the matching line and reports whether one existed.
func (c *Cart) Remove(id uuid.UUID, variant Variant) bool {
	idx := c.indexOf(id, variant)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}

// Total is the sum of price times quantity over every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return types.RoundMoney(total)
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Categories returns the distinct category slugs in the cart.
func (c *Cart) Categories() []string {
	if c == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
