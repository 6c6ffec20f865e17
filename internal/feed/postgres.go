package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/terra-clan/learning-tracker/internal/models"
)

// PostgresChannel is the NOTIFY channel shared by every user
const PostgresChannel = "learning_tracker_feed"

// PostgresBroker publishes with pg_notify and receives through a pq.Listener,
// fanning notifications out to local subscribers through a Hub.
type PostgresBroker struct {
	db       *sql.DB
	listener *pq.Listener
	hub      *Hub
	done     chan struct{}
}

// NewPostgresBroker connects to dsn and starts listening
func NewPostgresBroker(ctx context.Context, dsn string) (*PostgresBroker, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Warn("feed listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(PostgresChannel); err != nil {
		listener.Close()
		db.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", PostgresChannel, err)
	}

	b := &PostgresBroker{
		db:       db,
		listener: listener,
		hub:      NewHub(),
		done:     make(chan struct{}),
	}
	go b.run()

	slog.Info("postgres feed listening", "channel", PostgresChannel)
	return b, nil
}

func (b *PostgresBroker) run() {
	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case n, ok := <-b.listener.Notify:
			if !ok {
				return
			}
			// nil after a reconnect: anything sent meanwhile is lost
			if n == nil {
				slog.Info("feed listener reconnected, resyncing subscribers")
				b.hub.Resync(context.Background())
				continue
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
				slog.Warn("invalid feed payload", "channel", n.Channel, "error", err)
				continue
			}
			b.hub.Publish(context.Background(), ev)
		case <-ticker.C:
			if err := b.listener.Ping(); err != nil {
				slog.Warn("feed listener ping failed", "error", err)
			}
		}
	}
}

// Publish sends ev through NOTIFY
func (b *PostgresBroker) Publish(ctx context.Context, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, PostgresChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify: %w", err)
	}
	return nil
}

// Subscribe registers a local subscriber for userID
func (b *PostgresBroker) Subscribe(ctx context.Context, userID string) (<-chan models.Event, error) {
	return b.hub.Subscribe(ctx, userID)
}

// Ping verifies database connectivity
func (b *PostgresBroker) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close stops listening and ends all subscriptions
func (b *PostgresBroker) Close() error {
	close(b.done)
	b.hub.Close()
	if err := b.listener.Close(); err != nil {
		slog.Warn("failed to close feed listener", "error", err)
	}
	return b.db.Close()
}
