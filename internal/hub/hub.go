package hub

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/srujan5570/Communications-App/internal/config"
	"github.com/srujan5570/Communications-App/internal/metrics"
	pkglog "github.com/srujan5570/Communications-App/pkg/log"
)

// Hub tracks every open WebSocket connection, authenticated or not, so
// they can be counted and closed together on shutdown.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

// NewHub creates a new Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Config returns the WebSocket settings the hub was built with.
func (h *Hub) Config() config.WebSocketConfig {
	return h.config
}

// Run starts the hub's main loop. When ctx is cancelled every remaining
// client is closed and Run returns.
func (h *Hub) Run(ctx context.Context) {
	l := pkglog.L()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			n := len(h.clients)
			h.mu.Unlock()
			metrics.ActiveConnections.Set(float64(n))
			l.Debug().Str(pkglog.FieldConnID, client.id).Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.ActiveConnections.Set(float64(n))
			l.Debug().Str(pkglog.FieldConnID, client.id).Msg("client unregistered")

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.CloseWithReason(websocket.CloseGoingAway, "server shutting down")
				delete(h.clients, id)
			}
			h.mu.Unlock()
			metrics.ActiveConnections.Set(0)
			l.Info().Msg("hub stopped, all clients closed")
			return
		}
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client from the hub and closes it.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
