package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"

	"stayloom/internal/infra/broker/kafka"
	"stayloom/internal/infra/obs"
)

// The notifier consumes reservation events and emits guest-facing
// notifications. Delivery channels are logged for now; the consumer group
// machinery and event decoding are production-shaped.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	brokersRaw := getenv("KAFKA_BROKERS", "")
	if brokersRaw == "" {
		logger.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}
	brokers := strings.Split(brokersRaw, ",")

	topic := getenv("KAFKA_TOPIC_PREFIX", "") + "reservation.events.v1"
	consumer, err := kafka.NewConsumer(brokers, "stayloom-notifier", nil, notificationHandler{logger: logger})
	if err != nil {
		logger.Error("consumer setup failed", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	logger.Info("notifier starting", "topic", topic)
	if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
}

type notificationHandler struct {
	logger *slog.Logger
}

type cloudEvent struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

func (h notificationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.Warn("undecodable event, skipping", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	kind := strings.TrimSuffix(evt.Type, ".v1")
	h.logger.Info("reservation notification",
		"event", kind,
		"event_id", evt.ID,
		"aggregate", string(msg.Key),
		"payload", string(evt.Data),
	)
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
