package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const redisChannelPrefix = "learning-tracker:feed:"

// RedisBroker fans events out through Redis pub/sub, one channel per user,
// so every API instance sees every change.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker creates a broker on an existing client
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func redisChannel(userID string) string {
	return redisChannelPrefix + userID
}

// Publish sends ev to the user's channel
func (b *RedisBroker) Publish(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, redisChannel(ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe listens on the user's channel until ctx is done
func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan models.Event, error) {
	ps := b.client.Subscribe(ctx, redisChannel(userID))
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan models.Event, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev models.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("invalid feed payload", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Ping verifies Redis connectivity
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close is a no-op; the client is owned by the caller
func (b *RedisBroker) Close() error {
	return nil
}
