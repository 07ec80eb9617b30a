// Package hub fans broadcast messages out to a set of websocket
// subscribers. The dashboard runs one hub per feed (status, alerts).
package hub

import (
	"encoding/json"
	"sync"

	"github.com/proctorlabs/go-vigil/internal/log"
)

const broadcastBuffer = 256

// Hub tracks subscribers and delivers every broadcast to each of
// them. Membership changes and delivery all happen on the Run loop,
// so handlers never touch the client set directly.
type Hub struct {
	name string

	mu      sync.RWMutex
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// New returns a hub; name only shows up in logs.
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run services registrations and broadcasts until the process exits.
// Call it in its own goroutine before accepting connections.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("subscriber joined", "hub", h.name, "subscribers", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("subscriber left", "hub", h.name, "subscribers", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Subscriber is not draining its queue.
					// Drop it rather than stall the feed.
					delete(h.clients, c)
					close(c.send)
					log.Warn("dropped slow subscriber", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastJSON encodes v and queues it for every subscriber. If the
// broadcast queue is full the message is dropped; feeds carry live
// state, so a stale update is worthless anyway.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Warn("broadcast queue full, dropping update", "hub", h.name)
	}
	return nil
}

// ClientCount reports the current number of subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
