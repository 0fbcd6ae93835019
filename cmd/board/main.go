// The board worker consumes the order status stream and maintains the
// pickup-screen cache in Redis, so the screens poll Redis instead of the
// orders database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-kiosk/internal/catalog"
	"cafe-kiosk/internal/config"
	"cafe-kiosk/internal/events"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	statusKeyPrefix = "order_status:"
	statusTTL       = 5 * time.Minute
	workers         = 4
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting cafe-kiosk board worker")

	if !cfg.Kafka.Enabled {
		return fmt.Errorf("board worker requires kafka; set KAFKA_ENABLED=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := catalog.NewClient(cfg.Redis.Addr, cfg.Redis.DB)
	defer rdb.Close()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, events.TopicOrderStatus, workers, logger)
	return consumer.Start(ctx, statusHandler(rdb, logger))
}

// statusHandler caches the latest status per order code.
func statusHandler(rdb *redis.Client, logger zerolog.Logger) events.Handler {
	return func(ctx context.Context, m kafka.Message) error {
		var env events.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			return fmt.Errorf("malformed envelope: %w", err)
		}

		payload, err := events.UnwrapPayload[events.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return fmt.Errorf("malformed payload: %w", err)
		}

		key := statusKeyPrefix + payload.Code
		if err := rdb.Set(ctx, key, string(payload.To), statusTTL).Err(); err != nil {
			return fmt.Errorf("failed to cache status: %w", err)
		}

		logger.Debug().
			Str("code", payload.Code).
			Str("status", string(payload.To)).
			Msg("board status updated")
		return nil
	}
}
