package status

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/utils"
)

const (
	INFO = iota
	ERROR
	TICK
)

type status struct {
	Message string      `json:"message,omitempty"`
	Time    time.Time   `json:"time"`
	Type    int         `json:"type"`
	Data    interface{} `json:"data,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.l.Warnf("ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.l.Warnf("ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames so pongs and close are handled.
func (c *client) readPump() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.hub.unregisterClient(c)
			return
		}
	}
}

// Hub fans status messages of one session out to its websocket clients.
// New clients receive the last message first.
type Hub struct {
	lock        sync.Mutex
	clients     map[*client]bool
	lastMessage []byte
	closed      bool

	l *utils.Logger
}

func NewHub(l *utils.Logger) *Hub {
	return &Hub{clients: make(map[*client]bool), l: l}
}

// AddClient takes ownership of conn until it fails or the hub is closed.
func (h *Hub) AddClient(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}

	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	if h.lastMessage != nil {
		c.send <- h.lastMessage
	}
	h.lock.Unlock()

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregisterClient(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(s *status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal status")
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	h.lastMessage = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow reader, drop it
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

func (h *Hub) Info(msg string) error {
	return h.broadcast(&status{Message: msg, Time: time.Now(), Type: INFO})
}

func (h *Hub) Error(err error) error {
	return h.broadcast(&status{Message: err.Error(), Time: time.Now(), Type: ERROR})
}

// Tick publishes per channel metadata after an animation update.
func (h *Hub) Tick(data interface{}) error {
	return h.broadcast(&status{Time: time.Now(), Type: TICK, Data: data})
}

// LastMessage returns the last broadcast payload or nil.
func (h *Hub) LastMessage() []byte {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.lastMessage
}

func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
