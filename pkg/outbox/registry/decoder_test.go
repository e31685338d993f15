package registry

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/outbox"
	"github.com/elarose/storefront/pkg/outbox/payloads"
)

func TestDecoderRegistryVersions(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderStatusChanged, 1, func(payload json.RawMessage) (any, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"to":"shipped"}`)
	output, err := reg.Decode(enums.EventOrderStatusChanged, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["to"] != "shipped" {
		t.Fatalf("unexpected output %+v", output)
	}
	if _, err := reg.Decode(enums.EventOrderStatusChanged, 2, input); err == nil {
		t.Fatal("expected error for unregistered version")
	}
}

func TestDefaultDecodersReadOrderPlacedMessage(t *testing.T) {
	eventID, orderID := uuid.New(), uuid.New()
	data, _ := json.Marshal(payloads.OrderPlacedEvent{OrderID: orderID, UserID: "user-9", ItemCount: 2})
	body, _ := json.Marshal(outbox.PayloadEnvelope{EventID: eventID.String(), Data: data})

	msg, err := DefaultDecoders().DecodeMessage(enums.EventOrderPlaced, body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	payload, ok := msg.Payload.(*payloads.OrderPlacedEvent)
	if !ok || payload.OrderID != orderID || msg.EventID != eventID {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestDecodeMessageRejectsBrokenBodies(t *testing.T) {
	reg := DefaultDecoders()
	cases := map[string]string{
		"not json":   `nope`,
		"bad id":     `{"version":1,"event_id":"x","data":{}}`,
		"no payload": `{"version":1,"event_id":"` + uuid.NewString() + `","data":null}`,
		"unknown v":  `{"version":7,"event_id":"` + uuid.NewString() + `","data":{}}`,
	}
	for name, body := range cases {
		if _, err := reg.DecodeMessage(enums.EventOrderPlaced, []byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
