package helpers

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/elarose/storefront/internal/cart"
	"github.com/elarose/storefront/pkg/db/models"
)

// BuildOrderItems reshapes cart lines into order items. Prices are the
// snapshots taken when the line was added.
func BuildOrderItems(lines []cart.LineItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:   line.ID,
			ProductName: line.Name,
			ImageURL:    line.Image,
			Size:        line.Size,
			Color:       line.Color,
			UnitPrice:   line.Price,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal(),
		})
	}
	return items
}

// QuantitiesByProduct sums quantities across variants of the same product.
// Ids come back in ascending byte order so concurrent checkouts lock stock
// rows in the same sequence.
func QuantitiesByProduct(lines []cart.LineItem) ([]uuid.UUID, map[uuid.UUID]int) {
	order := make([]uuid.UUID, 0, len(lines))
	totals := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if _, seen := totals[line.ID]; !seen {
			order = append(order, line.ID)
		}
		totals[line.ID] += line.Quantity
	}
	slices.SortFunc(order, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return order, totals
}
