package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nvaghela/dukaan-backend/internal/app/model"
	"github.com/nvaghela/dukaan-backend/pkg/logger"
)

// Client is one WebSocket session for a user.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// StatusEvent is the wire payload pushed when a submission changes state.
type StatusEvent struct {
	Type      string                 `json:"type"`
	Status    model.SubmissionStatus `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
}

// Hub manages WebSocket connections and fans verification status events out
// to the owning seller's sessions. Delivery is best-effort; the status
// endpoint remains the source of truth.
type Hub struct {
	// Registered clients (UserID -> []*Client, multi-device support)
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	send       chan *userMessage

	mu sync.RWMutex
}

type userMessage struct {
	UserID  uint
	Message []byte
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		send:       make(chan *userMessage, 1024),
	}
}

// Run processes registrations and outgoing events. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}

				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":            client.UserID,
				"remaining_sessions": len(h.clients[client.UserID]),
			})

		case message := <-h.send:
			h.mu.RLock()
			// Multi-device: deliver to every session of the user
			if clientList, ok := h.clients[message.UserID]; ok {
				for _, client := range clientList {
					select {
					case client.Send <- message.Message:
					default:
						// Send buffer is full; drop the session asynchronously
						go h.Unregister(client)
						logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
							"user_id": message.UserID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToUser delivers a message to every session of one user. A full outgoing
// queue drops the message; clients reconcile via the status endpoint.
func (h *Hub) SendToUser(userID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.send <- &userMessage{UserID: userID, Message: data}:
		return nil
	default:
		logger.Warn("Send channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
		return nil
	}
}

// NotifyStatus pushes a verification status change to the seller. Implements
// the notifier the services publish through.
func (h *Hub) NotifyStatus(userID uint, status model.SubmissionStatus) {
	event := StatusEvent{
		Type:      "kyc_status_changed",
		Status:    status,
		Timestamp: time.Now(),
	}
	if err := h.SendToUser(userID, event); err != nil {
		logger.Warn("Failed to push status event", map[string]interface{}{
			"user_id": userID,
			"status":  status,
		})
	}
}

// Register registers a client.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one live session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
