package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"mangahub/pkg/logger"
	"mangahub/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameBytes  = int64(4096)
)

// Client is one WebSocket session: one (user, room) pair, run as a reader
// task and a writer task communicating over a bounded outbound channel
// (spec §9's callback-style handler model).
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan models.ChatMessage
	userID   string
	username string
	roomID   string
}

// readPump parses inbound chat messages and forwards valid ones to the
// hub. It owns the connection's read deadline and pong handling.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound models.ChatMessage
		if err := c.conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("websocket read error: %v", err)
			}
			return
		}

		inbound.Room = c.roomID
		if err := inbound.Validate(); err != nil {
			continue
		}

		c.hub.submit(models.NewRoomMessage(c.roomID, c.userID, c.username, inbound.Message))
	}
}

// writePump drains the outbound queue to the socket and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
