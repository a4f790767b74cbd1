// Package events pushes session events to open pages over websockets and
// takes activity pings back from them.
package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Hub groups page sockets by browser-session id.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*websocket.Conn]struct{}
}

type Stats struct {
	Sessions int `json:"sessions"`
	Sockets  int `json:"sockets"`
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(sessionID string, ws *websocket.Conn) {
	h.mu.Lock()
	conns, ok := h.sessions[sessionID]
	if !ok {
		conns = make(map[*websocket.Conn]struct{})
		h.sessions[sessionID] = conns
	}
	conns[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(sessionID string, ws *websocket.Conn) {
	h.mu.Lock()
	h.removeLocked(sessionID, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Notify sends v as JSON to every page of sessionID. Sockets that fail the
// write are dropped.
func (h *Hub) Notify(sessionID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[events] encode: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.sessions[sessionID] {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			h.removeLocked(sessionID, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{Sessions: len(h.sessions)}
	for _, conns := range h.sessions {
		s.Sockets += len(conns)
	}
	return s
}

func (h *Hub) removeLocked(sessionID string, ws *websocket.Conn) {
	conns, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(conns, ws)
	if len(conns) == 0 {
		delete(h.sessions, sessionID)
	}
}
