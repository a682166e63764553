package api

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/darkroom/agitator/internal/interpreter"
)

// wsMessage is the envelope broadcast to every connected WebSocket client.
type wsMessage struct {
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Snapshot  interpreter.Snapshot `json:"snapshot"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan wsMessage
}

// hub fans out interpreter snapshots to every connected status-watching
// WebSocket client.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient

	broadcast  chan wsMessage
	register   chan *wsClient
	unregister chan *wsClient
}

func newHub() *hub {
	return &hub{
		clients:    make(map[string]*wsClient),
		broadcast:  make(chan wsMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, c := range h.clients {
				select {
				case c.send <- msg:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *hub) broadcastSnapshot(snap interpreter.Snapshot) {
	h.broadcast <- wsMessage{Type: "snapshot", Timestamp: time.Now(), Snapshot: snap}
}

var clientSeq int64
var clientSeqMu sync.Mutex

func nextClientID() string {
	clientSeqMu.Lock()
	defer clientSeqMu.Unlock()
	clientSeq++
	return fmt.Sprintf("ws-%d", clientSeq)
}

func (h *hub) handle(conn *websocket.Conn) {
	c := &wsClient{id: nextClientID(), conn: conn, send: make(chan wsMessage, 64)}
	h.register <- c

	go c.writePump()
	c.readPump(h)
}

func (c *wsClient) readPump(h *hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		body, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
			return
		}
	}
}
