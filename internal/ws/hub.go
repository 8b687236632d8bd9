package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Client is one authenticated dashboard connection.
type Client struct {
	AccountID uint
	Role      string
	Send      chan []byte
	hub       *Hub
	mu        sync.Mutex
	closed    bool
}

func NewClient(accountID uint, role string) *Client {
	return &Client{AccountID: accountID, Role: role, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.hub != nil {
		c.hub.unregister(c)
	}
	close(c.Send)
}

// enqueue drops the message when the client is closed or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks live dashboard connections and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	// role -> clients
	byRole map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byRole:  make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
	if h.byRole[c.Role] == nil {
		h.byRole[c.Role] = make(map[*Client]struct{})
	}
	h.byRole[c.Role][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byRole[c.Role]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byRole, c.Role)
		}
	}
}

func (h *Hub) BroadcastAll(payload interface{}) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	return h.deliver(clients, payload)
}

func (h *Hub) BroadcastToRole(role string, payload interface{}) int {
	h.mu.RLock()
	m := h.byRole[role]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	return h.deliver(clients, payload)
}

func (h *Hub) deliver(clients []*Client, payload interface{}) int {
	if len(clients) == 0 {
		return 0
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ws] marshal broadcast: %v", err)
		return 0
	}
	sent := 0
	for _, c := range clients {
		if c.enqueue(data) {
			sent++
		}
	}
	return sent
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
