package api

import (
	"log/slog"
	"sync"

	"github.com/skyduel/skyduel/internal/model"
)

// Event is one read-only lobby/match lifecycle notification streamed to
// observers.
type Event struct {
	Type    string   `json:"type"` // presence, match_started, match_ended
	Players []string `json:"players,omitempty"`
	Winner  string   `json:"winner,omitempty"`
	Loser   string   `json:"loser,omitempty"`
	Draw    bool     `json:"draw,omitempty"`
}

// subscriberBuffer is the per-subscriber event queue depth; slow consumers
// drop events rather than block the game core.
const subscriberBuffer = 16

// Hub fans lifecycle events out to websocket observers. It satisfies the
// observer interfaces of the protocol server and the simulation worker.
type Hub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new observer channel
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes an observer channel and closes it
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// SubscriberCount returns the number of connected observers
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// PresenceChanged publishes a fresh presence snapshot
func (h *Hub) PresenceChanged(snapshot []model.Identity) {
	players := make([]string, len(snapshot))
	for i, id := range snapshot {
		players[i] = string(id)
	}
	h.publish(Event{Type: "presence", Players: players})
}

// MatchStarted publishes a match creation event
func (h *Hub) MatchStarted(a, b model.Identity) {
	h.publish(Event{Type: "match_started", Players: []string{string(a), string(b)}})
}

// MatchEnded publishes a match completion event
func (h *Hub) MatchEnded(winner, loser model.Identity, draw bool) {
	h.publish(Event{
		Type:   "match_ended",
		Winner: string(winner),
		Loser:  string(loser),
		Draw:   draw,
	})
}

func (h *Hub) publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			h.logger.Debug("observer event dropped", slog.String("type", event.Type))
		}
	}
}
