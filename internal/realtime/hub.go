package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"taskboard-api/internal/models"

	"go.uber.org/zap"
)

// Client represents a single attached feed consumer. The actual network
// conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is the wire shape of one activity feed message.
type Event struct {
	Type       string               `json:"type"`
	TaskID     uint                 `json:"task_id"`
	Action     models.HistoryAction `json:"action"`
	FromStatus *models.TaskStatus   `json:"from_status,omitempty"`
	ToStatus   *models.TaskStatus   `json:"to_status,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Hub fans recorded history entries out to every attached client. There is
// one board-wide feed; clients are keyed by an opaque connection id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewHub returns an empty hub. It is safe for concurrent use.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]Client)}
}

// Attach registers a client under a connection id.
func (h *Hub) Attach(id string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = client
}

// Detach removes a client.
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Len returns the number of attached clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a committed history entry to all attached clients. It
// satisfies the mutation engine's activity publisher contract and never
// blocks on a slow client; failed writes are left for the handler to clean
// up on its side.
func (h *Hub) Publish(entry models.TaskHistory) {
	event := Event{
		Type:       "task_" + string(entry.Action),
		TaskID:     entry.TaskID,
		Action:     entry.Action,
		FromStatus: entry.FromStatus,
		ToStatus:   entry.ToStatus,
		Timestamp:  entry.Timestamp,
	}
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Warn("failed to encode activity event", zap.Error(err))
		return
	}
	h.broadcast(message)
}

func (h *Hub) broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.Send(message)
	}
}
