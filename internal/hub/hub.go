// Package hub fans lifecycle events out to live websocket subscribers scoped
// by disaster identity. Delivery is best-effort at the moment of publish:
// there is no queue, no retry, and no ordering guarantee across distinct
// disasters.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/couchcryptid/disaster-response-hub/internal/domain"
	"github.com/couchcryptid/disaster-response-hub/internal/observability"
)

// sendBuffer is the per-connection outbound queue. A subscriber that falls
// this far behind starts losing events rather than stalling publishers.
const sendBuffer = 64

// envelope is the wire form of a delivered event.
type envelope struct {
	Kind       string          `json:"kind"`
	Action     domain.Action   `json:"action"`
	DisasterID string          `json:"disaster_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type subscriber struct {
	id   string
	send chan []byte
}

// Hub tracks connection membership and delivers published events to the
// matching subset of connections.
type Hub struct {
	metrics *observability.Metrics
	logger  *slog.Logger

	mu    sync.RWMutex
	conns map[string]*subscriber
	rooms map[string]map[string]struct{} // disasterID -> connIDs
}

// New creates an empty hub.
func New(metrics *observability.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		metrics: metrics,
		logger:  logger,
		conns:   make(map[string]*subscriber),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// Connect registers a connection and returns its outbound channel. The
// channel is closed by Disconnect and never by the caller.
func (h *Hub) Connect(connID string) <-chan []byte {
	sub := &subscriber{id: connID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.conns[connID] = sub
	h.mu.Unlock()

	h.metrics.ConnectionsActive.Inc()
	h.logger.Debug("connection registered", "conn_id", connID)
	return sub.send
}

// Disconnect removes all of the connection's memberships and closes its
// outbound channel. Safe to call for unknown connections.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	sub, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
		for disasterID, members := range h.rooms {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.rooms, disasterID)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		close(sub.send)
		h.metrics.ConnectionsActive.Dec()
		h.logger.Debug("connection removed", "conn_id", connID)
	}
}

// Join subscribes the connection to a disaster. Idempotent; joining an
// unknown connection is a no-op.
func (h *Hub) Join(connID, disasterID string) {
	if disasterID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connID]; !ok {
		return
	}
	members, ok := h.rooms[disasterID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[disasterID] = members
	}
	members[connID] = struct{}{}
}

// Leave unsubscribes the connection from a disaster.
func (h *Hub) Leave(connID, disasterID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[disasterID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, disasterID)
	}
}

// Subscribed reports whether the connection currently watches the disaster.
func (h *Hub) Subscribed(connID, disasterID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[disasterID][connID]
	return ok
}

// Publish delivers the event to every eligible connection present at publish
// time: all connections for a global event, the disaster's subscribers
// otherwise. A full subscriber buffer drops that delivery; the hub never
// fails publicly.
func (h *Hub) Publish(event domain.LifecycleEvent) {
	data, err := json.Marshal(envelope{
		Kind:       event.Kind,
		Action:     event.Action,
		DisasterID: event.Scope,
		Payload:    event.Payload,
	})
	if err != nil {
		h.logger.Error("failed to encode lifecycle event", "kind", event.Kind, "error", err)
		return
	}

	scopeLabel := "disaster"
	if event.Global() {
		scopeLabel = "global"
	}
	h.metrics.EventsPublished.WithLabelValues(scopeLabel).Inc()

	// Membership is frozen for the duration of the read lock, which is the
	// publish-time snapshot: a concurrent Join takes effect for the next
	// event, and a concurrent Disconnect cannot close a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.Global() {
		for _, sub := range h.conns {
			h.deliver(sub, data)
		}
		return
	}

	for connID := range h.rooms[event.Scope] {
		if sub, ok := h.conns[connID]; ok {
			h.deliver(sub, data)
		}
	}
}

func (h *Hub) deliver(sub *subscriber, data []byte) {
	select {
	case sub.send <- data:
		h.metrics.EventsDelivered.Inc()
	default:
		h.metrics.EventsDropped.Inc()
		h.logger.Warn("subscriber buffer full, dropping event", "conn_id", sub.id)
	}
}
