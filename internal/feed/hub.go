package feed

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const subscriberBuffer = 32

// ErrClosed is returned when subscribing to a closed broker
var ErrClosed = errors.New("feed: broker closed")

// subscriber delivers through a buffered channel. Events that overflow the
// buffer are kept as the latest one per collection and delivered once the
// reader catches up, so a lagging reader still learns every collection that
// changed.
type subscriber struct {
	ch      chan models.Event
	done    chan struct{}
	wake    chan struct{}
	mu      sync.Mutex
	pending map[models.Collection]models.Event
}

func newSubscriber() *subscriber {
	s := &subscriber{
		ch:      make(chan models.Event, subscriberBuffer),
		done:    make(chan struct{}),
		wake:    make(chan struct{}, 1),
		pending: make(map[models.Collection]models.Event),
	}
	go s.flush()
	return s
}

// offer never blocks. While overflow is pending, newer events join it so
// they are not delivered ahead of it.
func (s *subscriber) offer(ev models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		select {
		case s.ch <- ev:
			return true
		default:
		}
	}
	s.pending[ev.Collection] = ev
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return false
}

func (s *subscriber) flush() {
	defer close(s.ch)

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			ev, ok := s.next()
			if !ok {
				break
			}
			select {
			case s.ch <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// next takes the pending event for the first collection in stable order
func (s *subscriber) next() (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return models.Event{}, false
	}
	keys := make([]models.Collection, 0, len(s.pending))
	for c := range s.pending {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ev := s.pending[keys[0]]
	delete(s.pending, keys[0])
	return ev, true
}

// Hub is an in-process Broker. It is also the local fan-out behind the
// Redis and Postgres brokers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers ev to every subscriber of ev.UserID. A subscriber whose
// buffer is full gets the latest event per collection once it catches up.
func (h *Hub) Publish(_ context.Context, ev models.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[ev.UserID] {
		if !s.offer(ev) {
			slog.Debug("feed subscriber lagging, event coalesced",
				"user_id", ev.UserID,
				"collection", ev.Collection,
			)
		}
	}
	return nil
}

// Resync tells every local subscriber that all record collections may have
// changed. Used when events could have been missed.
func (h *Hub) Resync(ctx context.Context) {
	h.mu.RLock()
	users := make([]string, 0, len(h.subs))
	for userID := range h.subs {
		users = append(users, userID)
	}
	h.mu.RUnlock()

	now := time.Now().UTC()
	for _, userID := range users {
		for _, c := range models.Collections {
			h.Publish(ctx, models.Event{UserID: userID, Collection: c, Op: models.OpUpdated, At: now})
		}
	}
}

// Subscribe registers a subscriber for userID until ctx is done
func (h *Hub) Subscribe(ctx context.Context, userID string) (<-chan models.Event, error) {
	s := newSubscriber()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.done)
		return nil, ErrClosed
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(userID, s)
	}()

	return s.ch, nil
}

func (h *Hub) remove(userID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
	close(s.done)
}

// Subscribers returns how many subscriptions userID currently holds
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

func (h *Hub) Ping(context.Context) error { return nil }

// Close ends every subscription
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for userID, set := range h.subs {
		for s := range set {
			close(s.done)
		}
		delete(h.subs, userID)
	}
	return nil
}
