package web

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single write so a client that stops reading is dropped
// instead of blocking the broadcaster.
const writeWait = 2 * time.Second

// Hub fans status updates out to websocket clients. Writes happen under the
// mutex so each connection has a single writer.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Add registers conn and sends it the initial payload.
func (h *Hub) Add(conn *websocket.Conn, initial []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	if initial != nil {
		if err := write(conn, initial); err != nil {
			log.Printf("web: initial status: %v", err)
			h.drop(conn)
		}
	}
}

// Remove unregisters and closes conn.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	h.drop(conn)
	h.mu.Unlock()
}

// Broadcast sends data to every client, dropping any that fail.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := write(conn, data); err != nil {
			log.Printf("web: broadcast: %v", err)
			h.drop(conn)
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for conn := range h.clients {
		h.drop(conn)
	}
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
