package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"plemiona/modules/kit/logx"
)

// Hub fans notifications out to the connected clients of each session.
// It implements notify.Notifier.
type Hub struct {
	mu sync.RWMutex
	// sessionID -> playerID -> connection
	sessions map[string]map[string]*Conn

	upgrader websocket.Upgrader
	log      logx.Logger
}

func NewHub(log logx.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[string]*Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Attach upgrades the request and registers the connection under the
// session/player pair, replacing any previous connection for that player.
func (h *Hub) Attach(w http.ResponseWriter, r *http.Request, sessionID, playerID string) error {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newConn(wsConn, h.log)

	h.mu.Lock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]*Conn)
	}
	if old := h.sessions[sessionID][playerID]; old != nil {
		old.Close()
	}
	h.sessions[sessionID][playerID] = c
	h.mu.Unlock()

	c.run(func() { h.detach(sessionID, playerID, c) })
	h.log.Info("ws attached",
		zap.String("session", sessionID),
		zap.String("player", playerID),
	)
	return nil
}

func (h *Hub) detach(sessionID, playerID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.sessions[sessionID][playerID]; cur == c {
		delete(h.sessions[sessionID], playerID)
		if len(h.sessions[sessionID]) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

func (h *Hub) NotifyPlayer(sessionID, playerID, name string, msg any) {
	h.mu.RLock()
	c := h.sessions[sessionID][playerID]
	h.mu.RUnlock()
	if c != nil {
		c.push(&Envelope{Name: name, Msg: msg})
	}
}

func (h *Hub) NotifySession(sessionID, name string, msg any) {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.sessions[sessionID]))
	for _, c := range h.sessions[sessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.push(&Envelope{Name: name, Msg: msg})
	}
}
