package events

import (
	"cafe-kiosk/internal/model"

	"github.com/rs/zerolog"
)

// Publisher is the service-facing event sink. Publishing happens after the
// database transaction commits and is fire-and-forget; the order row is the
// source of truth, the stream is a notification channel.
type Publisher interface {
	OrderCreated(order *model.Order, items []model.LineItem)
	OrderStatusChanged(order *model.Order, from model.Status)
}

// kafkaPublisher publishes envelopes onto the order stream.
type kafkaPublisher struct {
	producer *Producer
	service  string
	logger   zerolog.Logger
}

// NewKafkaPublisher creates a Publisher on top of a running Producer.
func NewKafkaPublisher(producer *Producer, serviceName string, logger zerolog.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		service:  serviceName,
		logger:   logger.With().Str("component", "event-publisher").Logger(),
	}
}

func (p *kafkaPublisher) OrderCreated(order *model.Order, items []model.LineItem) {
	lines := make([]EventLine, len(items))
	for i, it := range items {
		lines[i] = EventLine{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			SubtotalCents:  it.SubtotalCents,
		}
	}

	var userID *string
	if order.UserID != nil {
		s := order.UserID.String()
		userID = &s
	}

	env := NewEnvelope(EventOrderCreated, p.service, order.Code, OrderCreatedPayload{
		OrderID:        order.ID.String(),
		Code:           order.Code,
		UserID:         userID,
		BranchID:       order.BranchID.String(),
		Status:         order.Status,
		TotalCents:     order.TotalCents,
		PointsRedeemed: order.PointsRedeemed,
		Items:          lines,
	})

	p.producer.Publish(TopicOrderCreated, PartitionKey(order.Code), MustMarshal(env))
	p.logger.Debug().Str("code", order.Code).Msg("order created event published")
}

func (p *kafkaPublisher) OrderStatusChanged(order *model.Order, from model.Status) {
	env := NewEnvelope(EventOrderStatusChanged, p.service, order.Code, OrderStatusChangedPayload{
		OrderID:       order.ID.String(),
		Code:          order.Code,
		From:          from,
		To:            order.Status,
		PointsAwarded: order.PointsAwarded,
		TotalCents:    order.TotalCents,
	})

	p.producer.Publish(TopicOrderStatus, PartitionKey(order.Code), MustMarshal(env))
	p.logger.Debug().
		Str("code", order.Code).
		Str("from", string(from)).
		Str("to", string(order.Status)).
		Msg("status change event published")
}

// NopPublisher discards all events. Used in tests and when the stream is
// disabled by configuration.
type NopPublisher struct{}

func (NopPublisher) OrderCreated(*model.Order, []model.LineItem)   {}
func (NopPublisher) OrderStatusChanged(*model.Order, model.Status) {}
