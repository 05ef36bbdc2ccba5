package api

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// Hub fans progress events out to the connected websocket clients.
// A slow client is dropped rather than allowed to block the run.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan contracts.ProgressEvent
	log     *logger.Logger
}

// NewHub creates a Hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan contracts.ProgressEvent),
		log:     log,
	}
}

// Broadcast sends an event to every connected client without blocking
func (h *Hub) Broadcast(event contracts.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// backpressure: drop the laggard
			h.remove(conn)
		}
	}
}

// Add registers a connection and starts its writer goroutine
func (h *Hub) Add(conn *websocket.Conn) {
	ch := make(chan contracts.ProgressEvent, 64)

	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	go func() {
		defer conn.Close()
		for event := range ch {
			if err := conn.WriteJSON(event); err != nil {
				h.mu.Lock()
				h.remove(conn)
				h.mu.Unlock()
				return
			}
		}
	}()
}

// remove must be called with mu held
func (h *Hub) remove(conn *websocket.Conn) {
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
