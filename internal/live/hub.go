package live

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// tickInterval is the simulation broadcast rate, roughly 30 frames/s.
const tickInterval = 33 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected browser. Writes are serialized per connection;
// gorilla conns do not tolerate concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg serverMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("live: websocket write: %v", err)
	}
}

// Hub fans simulation frames out to every connected client and routes
// their messages into the shared session.
type Hub struct {
	session *Session

	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates a hub over the given session.
func NewHub(session *Session) *Hub {
	return &Hub{
		session: session,
		clients: make(map[*client]bool),
	}
}

// RegisterRoutes mounts the page, the profile API, and the WebSocket
// endpoint onto the given router.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get("/", ServeIndex)
	r.Get("/api/profile/{name}", h.handleProfile)
	r.Get("/ws/graph", h.handleWebSocket)
}

// Run steps the simulation on a fixed tick and broadcasts each frame
// until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f := h.session.Frame(); f != nil {
				h.broadcast(serverMessage{Type: MsgTick, Frame: f})
			}
		}
	}
}

func (h *Hub) broadcast(msg serverMessage) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.send(msg)
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn}

	// A failed load retries on the next connection rather than leaving
	// every future client stuck at a dead view.
	if !h.session.Loaded() || h.session.Failed() {
		if err := h.session.Load(r.Context()); err != nil {
			c.send(serverMessage{Type: MsgStatus, Status: "failed"})
			return
		}
	}
	if snap := h.session.Snapshot(); snap != nil {
		c.send(serverMessage{Type: MsgGraph, Graph: snap})
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		// A drag in flight when the connection dies would otherwise
		// never see its pointerup.
		h.session.ReleaseGestures(c)
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("live: websocket read: %v", err)
			}
			return
		}

		out := h.session.HandleMessage(r.Context(), c, msg)
		for _, m := range out.Reply {
			c.send(m)
		}
		for _, m := range out.Broadcast {
			h.broadcast(m)
		}
	}
}
