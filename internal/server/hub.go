package server

import (
	"encoding/json"
	"sync"
)

// Hub fans controller updates out to every connected websocket client.
// Each payload is marshalled once per broadcast, then pushed to every
// client queue.
type Hub struct {
	mu               sync.Mutex
	clients          map[*Client]struct{}
	broadcastStatus  chan StatusResponse
	broadcastHistory chan historyPayload
	broadcastReset   chan resetPayload
}

type Client struct {
	out chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:          make(map[*Client]struct{}),
		broadcastStatus:  make(chan StatusResponse, 32),
		broadcastHistory: make(chan historyPayload, 32),
		broadcastReset:   make(chan resetPayload, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastStatus:
			h.broadcast(wsMessage{Type: "status", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastHistory:
			h.broadcast(wsMessage{Type: "history", Payload: mustMarshal(payload)})
		case payload := <-h.broadcastReset:
			h.broadcast(wsMessage{Type: "reset", Payload: mustMarshal(payload)})
		}
	}
}

func (h *Hub) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	for client := range h.clients {
		client.push(data)
	}
	h.mu.Unlock()
}

func (h *Hub) Attach(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

// Detach closes the client's queue exactly once, which ends its write
// loop.
func (h *Hub) Detach(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.out)
}

// push drops the update when the client cannot keep up; the next status
// broadcast carries the full picture again.
func (c *Client) push(data []byte) {
	select {
	case c.out <- data:
	default:
	}
}

func (c *Client) sendMessage(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.push(data)
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
