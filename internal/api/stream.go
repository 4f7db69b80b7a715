package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/terra-clan/explorers-hub/internal/models"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is sent to progress stream subscribers
type StreamMessage struct {
	Type string          `json:"type"`
	Data *models.Summary `json:"data,omitempty"`
}

// streamHub fans progress summaries out to websocket subscribers.
// Each subscriber only ever holds the most recent summary.
type streamHub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]chan models.Summary
}

func newStreamHub() *streamHub {
	return &streamHub{clients: make(map[uuid.UUID]chan models.Summary)}
}

func (h *streamHub) subscribe() (uuid.UUID, <-chan models.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New()
	ch := make(chan models.Summary, 1)
	h.clients[id] = ch
	return id, ch
}

func (h *streamHub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *streamHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast replaces any undelivered summary with the new one; it never blocks
func (h *streamHub) broadcast(summary models.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.clients {
		select {
		case <-ch:
		default:
		}
		ch <- summary
	}
}

func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	id, updates := s.stream.subscribe()
	defer func() {
		s.stream.unsubscribe(id)
		slog.Info("progress stream disconnected", "subscriber", id, "subscribers", s.stream.count())
	}()

	slog.Info("progress stream connected", "subscriber", id, "subscribers", s.stream.count())

	// Read from WebSocket only to notice the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	summary := s.tracker.Summary()
	if err := s.sendStreamMessage(conn, StreamMessage{Type: "summary", Data: &summary}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case summary := <-updates:
			if err := s.sendStreamMessage(conn, StreamMessage{Type: "summary", Data: &summary}); err != nil {
				return
			}
		}
	}
}

func (s *Server) sendStreamMessage(conn *websocket.Conn, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal stream message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send stream message", "error", err)
		return err
	}
	return nil
}
