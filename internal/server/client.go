package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
)

// clientBufferSize is the per-client send channel buffer. It absorbs
// short bursts without blocking the broadcaster; a full buffer means the
// client is dead or hopelessly behind and gets dropped.
const clientBufferSize = 16

// writeWait is the deadline for a single WebSocket write.
const writeWait = 10 * time.Second

// Client is a WebSocket-backed Session.
type Client struct {
	conn *websocket.Conn
	send chan Notification

	// limiter bounds inbound messages; the UI only sends pings, so
	// anything chatty is misbehaving.
	limiter *rate.Limiter

	closeOnce sync.Once
	done      chan struct{}
}

// newClient wraps an upgraded WebSocket connection.
func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan Notification, clientBufferSize),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		done:    make(chan struct{}),
	}
}

// Send queues a notification for delivery. It never blocks: a full
// buffer fails the send so the broadcaster can drop this session
// without stalling delivery to the others.
func (c *Client) Send(n Notification) error {
	select {
	case <-c.done:
		return apperrors.New(apperrors.CodeServerSendFailed, "session is closed")
	case c.send <- n:
		return nil
	default:
		return apperrors.New(apperrors.CodeServerSendFailed, "session send buffer full")
	}
}

// Close shuts the session down. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump drains the send channel onto the wire.
// Runs as a goroutine per client; exits when the session closes.
func (c *Client) writePump(onDead func(*Client)) {
	for {
		select {
		case <-c.done:
			return
		case n := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(n); err != nil {
				log.Printf("[Server] Write to client failed: %v", err)
				onDead(c)
				return
			}
		}
	}
}

// readPump consumes inbound frames until the connection drops. The UI
// sends nothing meaningful, but reading is required to process control
// frames and detect closure.
func (c *Client) readPump(onDead func(*Client)) {
	defer onDead(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		if !c.limiter.Allow() {
			log.Printf("[Server] Client flooding, disconnecting")
			return
		}
	}
}
