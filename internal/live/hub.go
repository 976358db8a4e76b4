package live

import (
	"sync"

	"routegraph/dashboard/internal/logging"
	"routegraph/dashboard/internal/metrics"
	"routegraph/dashboard/internal/models"
)

// Hub fans every change event out to the registered session handlers.
type Hub struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	metrics  *metrics.MetricsRegistry
}

func NewHub(m *metrics.MetricsRegistry) *Hub {
	return &Hub{handlers: make(map[string]Handler), metrics: m}
}

// Register adds or replaces the handler for a session.
func (h *Hub) Register(sessionID string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.handlers[sessionID]; !exists {
		h.metrics.WorkspaceOpened()
	}
	h.handlers[sessionID] = handler
	logging.Debug("session registered with hub", "session_id", sessionID)
}

func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.handlers[sessionID]; !exists {
		return
	}
	delete(h.handlers, sessionID)
	h.metrics.WorkspaceClosed()
	logging.Debug("session unregistered from hub", "session_id", sessionID)
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}

func (h *Hub) snapshot() []Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Handler, 0, len(h.handlers))
	for _, handler := range h.handlers {
		out = append(out, handler)
	}
	return out
}

func (h *Hub) HandleRoute(event models.ChangeEvent[models.Route]) {
	for _, handler := range h.snapshot() {
		handler.HandleRoute(event)
	}
}

func (h *Hub) HandleLocation(event models.ChangeEvent[models.Location]) {
	for _, handler := range h.snapshot() {
		handler.HandleLocation(event)
	}
}

func (h *Hub) HandleCoordinates(event models.ChangeEvent[models.Coordinates]) {
	for _, handler := range h.snapshot() {
		handler.HandleCoordinates(event)
	}
}
