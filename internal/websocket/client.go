package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	defaultBufferSize = 256
)

// Client is one live connection handle. A user may own several.
type Client struct {
	ID     string
	UserID uuid.UUID

	conn *websocket.Conn
	send chan []byte

	// mu guards closed and channels. Send holds it for reading so the send
	// channel is never written after close.
	mu       sync.RWMutex
	closed   bool
	channels map[string]struct{}
}

// NewClient wraps conn. conn may be nil for handles that are only read
// through Messages.
func NewClient(conn *websocket.Conn, userID uuid.UUID, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		conn:     conn,
		send:     make(chan []byte, bufferSize),
		channels: make(map[string]struct{}),
	}
}

// Send queues msg without blocking. It reports false when the buffer is full
// or the handle has been disconnected.
func (c *Client) Send(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Messages is the outbound queue, closed on disconnect.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

func (c *Client) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

func (c *Client) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

func (c *Client) addChannel(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.channels[channel] = struct{}{}
	return true
}

func (c *Client) removeChannel(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.channels[channel]; !ok {
		return false
	}
	delete(c.channels, channel)
	return true
}

// detach closes the send queue and hands back the channels the handle was
// subscribed to. Later calls return nil.
func (c *Client) detach() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	c.channels = make(map[string]struct{})
	return out
}

// ReadPump delivers inbound frames to handle until the connection fails.
func (c *Client) ReadPump(handle func(frame []byte)) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				return err
			}
			return nil
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		handle(message)
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It returns once the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
