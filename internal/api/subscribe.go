package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/learning-tracker/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is one frame on the realtime stream. Snapshot frames carry
// the full current result set of one collection.
type StreamMessage struct {
	Type       string            `json:"type"`
	Collection models.Collection `json:"collection,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	At         time.Time         `json:"at"`
}

// parseCollections reads ?collections=a,b; empty means all
func parseCollections(raw string) (map[models.Collection]bool, bool) {
	wanted := make(map[models.Collection]bool)
	if strings.TrimSpace(raw) == "" {
		for _, c := range models.Collections {
			wanted[c] = true
		}
		return wanted, true
	}

	for _, part := range strings.Split(raw, ",") {
		c := models.Collection(strings.TrimSpace(part))
		if !c.Valid() {
			return nil, false
		}
		wanted[c] = true
	}
	return wanted, true
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	wanted, ok := parseCollections(r.URL.Query().Get("collections"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_request", "collections must be a list of courses, lessons, tasks")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.feed.Subscribe(ctx, uid)
	if err != nil {
		slog.Error("failed to subscribe to feed", "error", err, "user_id", uid)
		s.sendStreamMessage(conn, StreamMessage{Type: "error", Data: "realtime feed unavailable", At: time.Now()})
		return
	}

	slog.Info("subscriber connected", "user_id", uid, "collections", len(wanted))

	// Reader: only pongs and close frames are expected from the client.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	for _, c := range models.Collections {
		if wanted[c] && !s.sendSnapshot(ctx, conn, uid, c) {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("subscriber disconnected", "user_id", uid)
			return

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(writeWait))
				return
			}

			// Coalesce a burst of changes into one snapshot per collection.
			changed := map[models.Collection]bool{}
			var notices []models.Event
			collect := func(ev models.Event) {
				if ev.Collection == models.CollectionDigest {
					notices = append(notices, ev)
				} else if wanted[ev.Collection] {
					changed[ev.Collection] = true
				}
			}
			collect(ev)
		drain:
			for {
				select {
				case more, ok := <-events:
					if !ok {
						break drain
					}
					collect(more)
				default:
					break drain
				}
			}

			for _, n := range notices {
				if !s.sendStreamMessage(conn, StreamMessage{Type: "notice", Collection: n.Collection, Data: n.Data, At: n.At}) {
					return
				}
			}
			for _, c := range models.Collections {
				if changed[c] && !s.sendSnapshot(ctx, conn, uid, c) {
					return
				}
			}
		}
	}
}

func (s *Server) sendSnapshot(ctx context.Context, conn *websocket.Conn, uid string, c models.Collection) bool {
	data, err := s.tracker.Snapshot(ctx, uid, c)
	if err != nil {
		slog.Error("failed to build snapshot", "error", err, "user_id", uid, "collection", c)
		return s.sendStreamMessage(conn, StreamMessage{Type: "error", Collection: c, Data: unexpectedMessage, At: time.Now()})
	}
	return s.sendStreamMessage(conn, StreamMessage{Type: "snapshot", Collection: c, Data: data, At: time.Now()})
}

func (s *Server) sendStreamMessage(conn *websocket.Conn, msg StreamMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal stream message", "error", err)
		return false
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send stream message", "error", err)
		return false
	}
	return true
}
