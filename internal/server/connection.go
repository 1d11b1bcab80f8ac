package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gravitas-games/armory/internal/network"
	"github.com/gravitas-games/armory/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ws     *websocket.Conn
	player *models.Player
	log    logrus.FieldLogger

	// session is the actor this connection drives
	session *Session

	// Buffered channel for outbound messages
	send chan []byte

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewConnection creates a new connection for an authenticated player
func NewConnection(ws *websocket.Conn, player *models.Player, log logrus.FieldLogger) *Connection {
	return &Connection{
		ws:     ws,
		player: player,
		log:    log,
		send:   make(chan []byte, 256),
	}
}

// Handle runs the connection until the peer goes away or ctx is done.
func (c *Connection) Handle(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump(ctx)
	c.readPump(ctx) // Blocking
}

// readPump pumps messages from the WebSocket connection to the session
func (c *Connection) readPump(ctx context.Context) {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WebSocket read error")
			}
			return
		}
		c.player.Touch(time.Now())

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.log.WithError(err).Debug("Failed to parse client message")
			c.SendError("invalid_message", "Failed to parse message")
			continue
		}

		if !c.session.Submit(ctx, &clientMsg) {
			c.SendError("busy", "Too many pending requests")
		}
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-ctx.Done():
			// Server shutting down
			return
		}
	}
}

// SendMessage sends a message to the client. Messages sent after Close are
// dropped.
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("Failed to marshal message")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.WithField("type", msg.Type).Warn("Send buffer full, dropping message")
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close stops outbound delivery and closes the socket. It is safe to call
// more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		c.player.Connected = false
		c.ws.Close()
	})
}
