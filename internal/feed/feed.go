// Package feed carries change notifications from the tracker to realtime
// subscribers. Events are routed per user.
package feed

import (
	"context"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// Broker publishes events and hands out per-user subscriptions.
// A subscription channel is closed when its context is cancelled or the
// broker is closed.
type Broker interface {
	Publish(ctx context.Context, ev models.Event) error
	Subscribe(ctx context.Context, userID string) (<-chan models.Event, error)
	Ping(ctx context.Context) error
	Close() error
}
