package invoices

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/outbox/payloads"
	"github.com/elarose/storefront/pkg/outbox/registry"
)

// ConsumerName scopes idempotency keys for the invoice worker.
const ConsumerName = "invoice-worker"

type generator interface {
	Generate(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
}

type idempotencyChecker interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer renders an invoice for every order_placed event.
type Consumer struct {
	invoices     generator
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds the invoice consumer. subscription may be nil when the
// caller only drives Process directly.
func NewConsumer(invoices generator, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if invoices == nil {
		return nil, fmt.Errorf("invoice generator required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		invoices:     invoices,
		subscription: subscription,
		idempotency:  manager,
		decoders:     registry.DefaultDecoders(),
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("orders subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := c.Process(ctx, msg.Attributes["event_type"], msg.Data); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Process handles one message body. A returned error asks for redelivery;
// malformed messages are logged and dropped.
func (c *Consumer) Process(ctx context.Context, eventType string, data []byte) error {
	logCtx := c.logg.WithField(ctx, "event_type", eventType)
	if eventType != string(enums.EventOrderPlaced) {
		c.logg.Debug(logCtx, "skipping event not handled by invoice worker")
		return nil
	}

	msg, err := c.decoders.DecodeMessage(enums.EventOrderPlaced, data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode order placed message", err)
		return nil
	}
	eventID := msg.EventID
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	payload, ok := msg.Payload.(*payloads.OrderPlacedEvent)
	if !ok || payload.OrderID == uuid.Nil {
		c.logg.Warn(logCtx, "order placed payload missing order id")
		return nil
	}

	claimed, err := c.idempotency.Claim(ctx, ConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return err
	}
	if !claimed {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	logCtx = c.logg.WithField(logCtx, "order_id", payload.OrderID.String())
	invoice, err := c.invoices.Generate(ctx, payload.OrderID)
	if err != nil {
		c.logg.Error(logCtx, "invoice generation failed", err)
		_ = c.idempotency.Release(ctx, ConsumerName, eventID)
		return err
	}
	c.logg.Info(c.logg.WithField(logCtx, "invoice_number", invoice.Number), "invoice ready")
	return nil
}
