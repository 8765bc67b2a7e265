// Package notify fans task notifications out to connected WebSocket
// clients, addressed per user.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the WebSocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a connected WebSocket client. A client delivers nothing
// until it has joined as a user; one user may hold several clients
// (multiple tabs or devices).
type Client struct {
	ID     string
	UserID uint
	Conn   Conn
}

// Envelope is the wire format pushed to clients, mirroring the shape
// clients use for join and leave messages.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type pushMessage struct {
	userID  uint
	event   string
	payload any
}

// Hub tracks client connections and their user bindings and delivers
// notifications to every connection of the addressed user.
type Hub struct {
	clients    map[string]*Client
	users      map[uint]map[string]bool
	register   chan *Client
	unregister chan *Client
	push       chan *pushMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates an idle hub; call Run to start delivery.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[uint]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan *pushMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It exits when the context is cancelled,
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[notify] Hub shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case msg := <-h.push:
			h.handlePush(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.users = make(map[uint]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if client.UserID != 0 {
		h.bindLocked(client.ID, client.UserID)
	}
	log.Printf("[notify] Client %s connected", client.ID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	h.unbindLocked(client.ID)
	delete(h.clients, client.ID)
	log.Printf("[notify] Client %s disconnected", client.ID)
}

func (h *Hub) handlePush(msg *pushMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(Envelope{Type: msg.event, Payload: msg.payload})
	if err != nil {
		log.Printf("[notify] Failed to marshal notification: %v", err)
		return
	}

	for clientID := range h.users[msg.userID] {
		client, ok := h.clients[clientID]
		if !ok {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[notify] Failed to send to client %s: %v", clientID, err)
		}
	}
}

// bindLocked adds the client to a user's delivery set. Callers hold mu.
func (h *Hub) bindLocked(clientID string, userID uint) {
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]bool)
	}
	h.users[userID][clientID] = true
}

// unbindLocked drops the client from its user's delivery set. Callers hold mu.
func (h *Hub) unbindLocked(clientID string) {
	client, ok := h.clients[clientID]
	if !ok || client.UserID == 0 {
		return
	}
	if set := h.users[client.UserID]; set != nil {
		delete(set, clientID)
		if len(set) == 0 {
			delete(h.users, client.UserID)
		}
	}
	client.UserID = 0
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Join binds a connected client to a user, replacing any previous
// binding. Joining as user 0 only clears the old binding.
func (h *Hub) Join(clientID string, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return
	}

	h.unbindLocked(clientID)
	if userID == 0 {
		return
	}
	client.UserID = userID
	h.bindLocked(clientID, userID)
	log.Printf("[notify] Client %s joined as user %d", clientID, userID)
}

// Leave clears a client's user binding without disconnecting it.
func (h *Hub) Leave(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unbindLocked(clientID)
}

// Push queues a notification for every connection of the given user.
// Delivery is best-effort: with no connected clients the notification
// is dropped.
func (h *Hub) Push(userID uint, event string, payload any) {
	h.push <- &pushMessage{
		userID:  userID,
		event:   event,
		payload: payload,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of connections bound to a user.
func (h *Hub) UserClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
