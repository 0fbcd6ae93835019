package events

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when processing succeeded and the offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

// Consumer reads one topic with a worker pool and manual offset commits.
type Consumer struct {
	r       *kafka.Reader
	workers int
	logger  zerolog.Logger
}

// NewConsumer creates a consumer group reader for the given topic.
func NewConsumer(brokers []string, group, topic string, workers int, logger zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:       r,
		workers: workers,
		logger:  logger.With().Str("component", "event-consumer").Str("topic", topic).Logger(),
	}
}

// Start fetches messages and dispatches them to the worker pool until ctx
// is cancelled.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 256)

	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					c.logger.Error().
						Err(err).
						Str("key", string(m.Key)).
						Msg("event handler failed, offset not committed")
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.logger.Error().Err(err).Msg("failed to commit offset")
				}
			}
		}()
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			close(jobs)
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}
	}
}
