package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client is one connection subscribed to one channel, e.g. "exam:<id>".
type Client struct {
	Channel string
	Conn    *websocket.Conn
}

// Event is what goes out on the wire to every subscriber of a channel.
type Event struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub fans lifecycle events out to channel subscribers. It satisfies
// services.Broadcaster.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool

	Register   chan *Client
	Unregister chan *Client
	events     chan Event
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*websocket.Conn]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		events:      make(chan Event, 64),
	}
}

// Broadcast queues an event for every subscriber of channel.
func (h *Hub) Broadcast(channel, event string, payload interface{}) {
	h.events <- Event{Channel: channel, Event: event, Payload: payload}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			log.Printf("Client subscribed to %s", client.Channel)
			h.mu.Lock()
			if h.subscribers[client.Channel] == nil {
				h.subscribers[client.Channel] = make(map[*websocket.Conn]bool)
			}
			h.subscribers[client.Channel][client.Conn] = true
			h.mu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Client left %s", client.Channel)
			h.mu.Lock()
			if conns, ok := h.subscribers[client.Channel]; ok {
				delete(conns, client.Conn)
				if len(conns) == 0 {
					delete(h.subscribers, client.Channel)
				}
			}
			h.mu.Unlock()
		case event := <-h.events:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.subscribers[event.Channel]))
			for conn := range h.subscribers[event.Channel] {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error sending %s to subscriber: %v", event.Event, err)
					conn.Close()
					h.mu.Lock()
					if subs, ok := h.subscribers[event.Channel]; ok {
						delete(subs, conn)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}
