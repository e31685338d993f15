package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/outbox/payloads"
)

// Decoder turns the data section of an envelope into a typed payload.
type Decoder func(data json.RawMessage) (any, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry is the consumer-side view of the outbox contract: it
// knows how to read every payload version a worker may receive.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]Decoder
}

// Message is a decoded Pub/Sub body.
type Message struct {
	EventID  uuid.UUID
	Envelope outbox.PayloadEnvelope
	Payload  any
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]Decoder)}
}

// DefaultDecoders registers version 1 of every event the publisher emits.
func DefaultDecoders() *DecoderRegistry {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderPlaced, 1, jsonDecoder[payloads.OrderPlacedEvent]())
	reg.Register(enums.EventOrderStatusChanged, 1, jsonDecoder[payloads.OrderStatusChangedEvent]())
	reg.Register(enums.EventDiscountRedeemed, 1, jsonDecoder[payloads.DiscountRedeemedEvent]())
	return reg
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, data json.RawMessage) (any, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return decoder(data)
}

// DecodeMessage reads an envelope and its payload. Envelopes written
// before versioning default to version 1.
func (r *DecoderRegistry) DecodeMessage(eventType enums.OutboxEventType, body []byte) (*Message, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", envelope.EventID, err)
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("payload missing for %s", eventType)
	}
	version := envelope.Version
	if version == 0 {
		version = 1
	}
	payload, err := r.Decode(eventType, version, envelope.Data)
	if err != nil {
		return nil, err
	}
	return &Message{EventID: eventID, Envelope: envelope, Payload: payload}, nil
}

func jsonDecoder[T any]() Decoder {
	return func(data json.RawMessage) (any, error) {
		var out T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
}
