package api

import (
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/example/taskboard/modules/notify"
)

// handleWebSocket serves the notification channel at /ws. Clients bind
// to a user by sending a join message and unbind with leave; bound
// connections receive that user's task notifications.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	clientID := uuid.New().String()
	client := &notify.Client{
		ID:   clientID,
		Conn: c,
	}

	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s", clientID)
	}()

	log.Printf("[api] WebSocket client connected: %s", clientID)

	if err := c.WriteJSON(notify.Envelope{Type: "connected"}); err != nil {
		log.Printf("[api] Failed to send welcome to %s: %v", clientID, err)
		return
	}

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", clientID)
			} else {
				log.Printf("[api] Read error from %s: %v", clientID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			m.sendWSError(c, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "join":
			if msg.Payload.UserID == 0 {
				m.sendWSError(c, "A userId is required to join")
				continue
			}
			m.hub.Join(clientID, msg.Payload.UserID)
			_ = c.WriteJSON(notify.Envelope{Type: "joined", Payload: msg.Payload})
		case "leave":
			m.hub.Leave(clientID)
			_ = c.WriteJSON(notify.Envelope{Type: "left"})
		default:
			m.sendWSError(c, "Unknown message type: "+msg.Type)
		}
	}
}

func (m *APIModule) sendWSError(c *websocket.Conn, message string) {
	if err := c.WriteJSON(notify.Envelope{Type: "error", Payload: ErrorResponse{Error: message}}); err != nil {
		log.Printf("[api] Failed to send error message: %v", err)
	}
}
