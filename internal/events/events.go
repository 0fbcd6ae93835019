package events

import (
	"encoding/json"
	"time"

	"cafe-kiosk/internal/model"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// Envelope wraps every event on the order stream.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // the order code
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope around a marshalled payload.
func NewEnvelope(eventType, producer, correlationID string, payload any) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}
}

// ---- Payload types per event ----

type EventLine struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

type OrderCreatedPayload struct {
	OrderID        string       `json:"order_id"`
	Code           string       `json:"code"`
	UserID         *string      `json:"user_id,omitempty"`
	BranchID       string       `json:"branch_id"`
	Status         model.Status `json:"status"`
	TotalCents     int64        `json:"total_cents"`
	PointsRedeemed int          `json:"points_redeemed"`
	Items          []EventLine  `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID       string       `json:"order_id"`
	Code          string       `json:"code"`
	From          model.Status `json:"from"`
	To            model.Status `json:"to"`
	PointsAwarded int          `json:"points_awarded"`
	TotalCents    int64        `json:"total_cents"`
}

// MustMarshal panics on marshal failure; payloads are plain structs so a
// failure here is a programming error.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// UnwrapPayload decodes the payload of an envelope into a concrete type.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}
