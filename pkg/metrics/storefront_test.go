package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBlankLabelsRecordAsUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	storefront := NewStorefrontMetrics(reg)
	outbox := NewOutboxMetrics(reg)

	storefront.CartMutation("")
	storefront.DiscountOutcome("applied")
	outbox.Observe("", "published")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cart_mutations_total", "op", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected blank cart op recorded as unknown, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "discount_apply_total", "outcome", "applied"); err != nil || got != 1 {
		t.Fatalf("expected applied=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_events_total", "event_type", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected blank event type recorded as unknown, got %f (%v)", got, err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := normalizeLabel("outbox-retention"); got != "outbox-retention" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
