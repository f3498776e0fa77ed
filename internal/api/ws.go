package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsReadLimit      = 512
	wsBroadcastDepth = 64
)

type wsMessage struct {
	Type string          `json:"type"`
	Data models.Advisory `json:"data"`
}

// Hub pushes fast-path advisories to connected websocket clients. Clients
// are read-only consumers; anything they send is discarded.
type Hub struct {
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	broadcast chan models.Advisory

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = utils.NewSilentLogger()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		broadcast: make(chan models.Advisory, wsBroadcastDepth),
		clients:   make(map[*websocket.Conn]struct{}),
	}
}

// Broadcast queues an advisory for delivery. Delivery is best effort; if the
// buffer is full the advisory is dropped rather than blocking ingestion.
func (h *Hub) Broadcast(advisory models.Advisory) {
	select {
	case h.broadcast <- advisory:
	default:
		h.logger.Warn("advisory dropped, broadcast buffer full", "advisory_id", advisory.ID)
	}
}

// Run delivers queued advisories until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case advisory := <-h.broadcast:
			h.send(advisory)
		}
	}
}

func (h *Hub) send(advisory models.Advisory) {
	payload, err := json.Marshal(wsMessage{Type: "advisory", Data: advisory})
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug("websocket client dropped", "remote", conn.RemoteAddr(), "error", err)
			h.drop(conn)
		}
	}
}

// HandleWS upgrades the connection and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "remote", conn.RemoteAddr())

	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	conn.SetReadLimit(wsReadLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
