package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sedanonpc/ddcore/internal/service/realtime"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Handler upgrades realtime connections and registers them with the hub.
// Each inbound text frame is echoed back to its sender through the hub;
// this is the hook point where real message routing would attach.
type Handler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// New creates the realtime websocket handler.
func New(hub *realtime.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes wires the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{userID}", h.handleWebSocket)
}

// wsConn serializes writes: the echo path and the ping loop both write to
// the same connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// SendText delivers one text frame.
func (c *wsConn) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sender := &wsConn{conn: conn}
	h.hub.Connect(userID, sender)
	defer h.hub.Disconnect(userID, sender)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, sender)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error user=%s: %v", userID, err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msgType != websocket.TextMessage {
			continue
		}

		log.Printf("[websocket] message user=%s bytes=%d", userID, len(data))
		h.hub.Send(userID, "Echo: "+string(data))
	}
}

func (h *Handler) pingLoop(ctx context.Context, sender *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sender.ping(); err != nil {
				return
			}
		}
	}
}
