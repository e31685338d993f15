package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontMetrics counts state-layer mutations on carts, wishlists and
// discount codes.
type StorefrontMetrics struct {
	cartMutations    *prometheus.CounterVec
	wishlistToggles  *prometheus.CounterVec
	discountOutcomes *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
}

// NewStorefrontMetrics registers the storefront counters on reg. A nil
// registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	wishlistToggles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_changes_total",
		Help: "Wishlist membership changes by direction.",
	}, []string{"direction"})
	discountOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_apply_total",
		Help: "Discount apply attempts by outcome.",
	}, []string{"outcome"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders committed through checkout.",
	})
	reg.MustRegister(cartMutations, wishlistToggles, discountOutcomes, ordersPlaced)
	return &StorefrontMetrics{
		cartMutations:    cartMutations,
		wishlistToggles:  wishlistToggles,
		discountOutcomes: discountOutcomes,
		ordersPlaced:     ordersPlaced,
	}
}

func (m *StorefrontMetrics) CartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *StorefrontMetrics) WishlistChange(added bool) {
	if m == nil || m.wishlistToggles == nil {
		return
	}
	direction := "removed"
	if added {
		direction = "added"
	}
	m.wishlistToggles.WithLabelValues(direction).Inc()
}

func (m *StorefrontMetrics) DiscountOutcome(outcome string) {
	if m == nil || m.discountOutcomes == nil {
		return
	}
	m.discountOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *StorefrontMetrics) OrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}
