package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ethanbrook-dev/pokerroom/pkg/server"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendQueueSize  = 64
)

// client is one websocket connection. Each connection gets its own player
// id for its lifetime; reconnecting means rejoining as a new player.
type client struct {
	hub  *Hub
	id   string
	conn *websocket.Conn

	// mu guards send against a close racing a delivery. enqueue and
	// markClosed are the only places that touch the channel directly.
	mu     sync.Mutex
	closed bool
	send   chan *server.Notification
}

// incoming is the message shape clients send. Amount is only meaningful
// for raise_bet.
type incoming struct {
	Action     string `json:"action"`
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	Amount     int64  `json:"amount"`
}

// readPump consumes client messages until the connection dies, then runs
// the disconnect teardown.
func (c *client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg incoming
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debugf("client %s read error: %v", c.id, err)
			}
			return
		}
		c.hub.handleMessage(c, &msg)
	}
}

// writePump serializes all writes to the connection: queued notifications
// and keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue queues a notification without ever blocking the caller. A client
// that cannot keep up loses messages rather than stalling the room, and a
// client that has disconnected silently drops them.
func (c *client) enqueue(n *server.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- n:
		return true
	default:
		return false
	}
}

// markClosed closes the send queue exactly once, after which writePump
// drains and exits. Safe to race with enqueue.
func (c *client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
