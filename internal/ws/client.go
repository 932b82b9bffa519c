package ws

import (
	"sync"
	"sync/atomic"
	"time"

	"loser-pays/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 32
	writeTimeout = 10 * time.Second
)

// Client is one websocket connection. Writes go through the send queue and a
// single writer goroutine; Send never blocks.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	closed chan struct{}
	once   sync.Once

	// pending counts frames queued but not yet handed to the socket.
	pending atomic.Int32
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:     store.NewID(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	c.pending.Add(1)
	select {
	case c.send <- payload:
		return true
	default:
		c.pending.Add(-1)
		metricSendDropped.Inc()
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) writeLoop() {
	defer c.close()
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			c.pending.Add(-1)
			if err != nil {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("ws_write_failed")
				return
			}
		}
	}
}

// flush waits briefly for queued frames to be written before a close.
func (c *Client) flush(d time.Duration) {
	deadline := time.Now().Add(d)
	for c.pending.Load() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}
