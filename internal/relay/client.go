package relay

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 4096                // Maximum message size allowed from peer.

	sendBufferSize = 256
)

// Client is the middleman between one websocket connection and the relay.
// It is owned by the process that accepted the connection and is never
// visible to sibling processes.
type Client struct {
	ID     uuid.UUID
	UserID int

	// DriverID is set once the peer sends register-driver; empty for
	// dashboard and sender connections.
	DriverID string

	router *Router
	conn   *websocket.Conn
	send   chan []byte
}

func newClient(router *Router, conn *websocket.Conn, userID int) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		router: router,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// readPump pumps inbound events from the websocket to the router.
func (c *Client) readPump() {
	defer func() {
		c.router.registry.Remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("relay: read error: %v", err)
			}
			break
		}
		c.router.handleMessage(c, message)
	}
}

// writePump pumps outbound frames from the send buffer to the websocket.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The registry closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
