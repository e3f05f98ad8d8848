package main

import (
	"encoding/json"
	"sync"
)

// Hub fans state updates out to every connected websocket client.
type Hub struct {
	mu             sync.Mutex
	clients        map[*Client]struct{}
	broadcastState chan stateResponse
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:        make(map[*Client]struct{}),
		broadcastState: make(chan stateResponse, 32),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcastState:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

// Publish drops the update when the broadcast queue is full; clients
// catch up on the next one or by sending request_state.
func (h *Hub) Publish(state stateResponse) {
	select {
	case h.broadcastState <- state:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
