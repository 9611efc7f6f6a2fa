package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventCheckoutCreated = "CheckoutCreated"
	EventOrderPlaced     = "OrderPlaced"
	EventPaymentVerified = "PaymentVerified"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // session_id or order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- per-event payloads ----

type CheckoutCreatedPayload struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	ItemCount int    `json:"item_count"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderPlacedPayload struct {
	OrderID       string `json:"order_id"`
	SessionID     string `json:"session_id"`
	PaymentMethod string `json:"payment_method"`
	GrandTotal    int64  `json:"grand_total"`
}

type PaymentVerifiedPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Outcome   string `json:"outcome"` // success | error
}

// Publisher is what the emitting side needs from the kafka producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emit wraps a payload in the versioned envelope and hands it to the
// producer. Fire-and-forget: event loss never fails a user request.
func Emit(p Publisher, service, eventType, traceID, correlationID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      service,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}
	p.Publish(PartitionKey(correlationID), MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
