package realtime

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Streams are server to client; inbound frames are only control traffic.
	maxMessageSize = 1024

	sendBuffer = 64
)

// Client is one websocket subscribed to a single conversation.
type Client struct {
	hub *Hub

	// The websocket connection. Nil in tests that only inspect Send.
	Conn *websocket.Conn

	// Buffered channel of outbound messages. Closed by the hub on unregister.
	Send chan []byte

	UserID         uint
	ConversationID uint

	// Close frame WritePump sends once Send is closed. Set by the hub
	// under its lock before closing Send.
	closeCode int
	closeText string
}

func newClient(hub *Hub, conn *websocket.Conn, conversationID, userID uint) *Client {
	return &Client{
		hub:            hub,
		Conn:           conn,
		UserID:         userID,
		ConversationID: conversationID,
		Send:           make(chan []byte, sendBuffer),
	}
}

// ReadPump drains inbound frames until the peer goes away, then unregisters
// the client. It blocks and must run on the handler goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c, "closed")
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, c.closeFrame())
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.Unregister(c, "write error")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Unregister(c, "ping failed")
				return
			}
		}
	}
}

// trySend queues message without blocking and reports whether it fit.
func (c *Client) trySend(message []byte) bool {
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeFrame() []byte {
	if c.closeCode == 0 {
		return []byte{}
	}
	return websocket.FormatCloseMessage(c.closeCode, c.closeText)
}
