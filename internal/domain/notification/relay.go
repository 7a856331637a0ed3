// internal/domain/notification/relay.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event is a status-change notice delivered to the order's owner
type Event struct {
	OrderID   uint      `json:"order_id"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// Relay delivers order events to connected clients. Delivery is best
// effort: a failed publish must never fail the status change that
// produced it.
type Relay interface {
	Notify(ctx context.Context, userID uint, event Event) error
}

// RedisRelay publishes events on per-user Redis channels
type RedisRelay struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisRelay creates a Redis-backed relay
func NewRedisRelay(client *redis.Client, logger *logrus.Logger) *RedisRelay {
	return &RedisRelay{client: client, logger: logger}
}

// Channel returns the pub/sub channel for a user
func Channel(userID uint) string {
	return fmt.Sprintf("notify:user:%d", userID)
}

// Notify publishes the event on the user's channel
func (r *RedisRelay) Notify(ctx context.Context, userID uint, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := r.client.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		r.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"order_id": event.OrderID,
		}).WithError(err).Warn("Failed to publish order notification")
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// NopRelay discards events
type NopRelay struct{}

// Notify implements Relay
func (NopRelay) Notify(ctx context.Context, userID uint, event Event) error { return nil }
