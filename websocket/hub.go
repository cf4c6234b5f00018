package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
)

// Control message types. Activity events use the services.Event* names.
const (
	TypeConnected    = "connected"
	TypeAuthResponse = "auth_response"
)

const sendBuffer = 32

// Notification is a message pushed to an admin's activity feed.
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Client is one open connection. An admin may hold several.
type Client struct {
	AdminID primitive.ObjectID
	conn    *websocket.Conn
	send    chan Notification
}

// Hub tracks connections per admin and fans events out to them.
type Hub struct {
	clients    map[primitive.ObjectID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	metrics    *metrics.Metrics
	log        *logger.Logger
}

func NewHub(m *metrics.Metrics, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
		log:        log,
	}
}

// Run owns registration until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.AdminID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.AdminID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.gauge(1)

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.AdminID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
					h.gauge(-1)
				}
				if len(set) == 0 {
					delete(h.clients, client.AdminID)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
					h.gauge(-1)
				}
			}
			h.clients = make(map[primitive.ObjectID]map[*Client]struct{})
			h.mu.Unlock()
			close(h.done)
			return
		}
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) gauge(delta float64) {
	if h.metrics != nil {
		h.metrics.WSConnections.Add(delta)
	}
}

// Connections returns how many connections adminID has open.
func (h *Hub) Connections(adminID primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[adminID])
}

// Notify queues an event on every connection of adminID. Slow connections
// whose buffer is full miss the event.
func (h *Hub) Notify(adminID primitive.ObjectID, eventType, message string, data interface{}) {
	n := Notification{
		Type:      eventType,
		Message:   message,
		Data:      data,
		UserID:    adminID.Hex(),
		Timestamp: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[adminID] {
		select {
		case client.send <- n:
		default:
			h.log.Warn("Dropping activity event for slow connection", "adminId", adminID.Hex(), "type", eventType)
		}
	}
}
