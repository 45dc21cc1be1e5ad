package cart

import (
	"context"
	"encoding/json"

	"delivery-marketplace/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// EventsChannel is the Redis channel cart events are published on. Clients
// subscribe to it to play the add-to-cart sound.
const EventsChannel = "cart-events"

// Notifier is told about every successful cart mutation, exactly once. It is
// fire-and-forget: implementations log their own failures.
type Notifier interface {
	CartChanged(ctx context.Context, event models.CartEvent)
}

// NopNotifier ignores events.
type NopNotifier struct{}

func (NopNotifier) CartChanged(context.Context, models.CartEvent) {}

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) CartChanged(_ context.Context, e models.CartEvent) {
	n.logger.Info("cart changed",
		zap.String("customerID", e.CustomerID),
		zap.String("action", string(e.Action)),
		zap.String("itemID", e.ItemID),
		zap.Int("quantity", e.Quantity),
	)
}

// RedisNotifier publishes events as JSON on EventsChannel.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

func (n *RedisNotifier) CartChanged(ctx context.Context, e models.CartEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		n.logger.Error("Failed to marshal cart event", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, EventsChannel, data).Err(); err != nil {
		n.logger.Warn("Failed to publish cart event", zap.String("customerID", e.CustomerID), zap.Error(err))
	}
}

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) CartChanged(ctx context.Context, e models.CartEvent) {
	for _, n := range ns {
		n.CartChanged(ctx, e)
	}
}
