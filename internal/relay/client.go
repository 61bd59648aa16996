package relay

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const noUser = -1

// client is one live connection. Everything sent to it goes through the
// buffered outbox drained by writeLoop, so the hub never blocks on a slow
// peer.
type client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID atomic.Int64
}

func newClient(conn *websocket.Conn, outboxSize int) *client {
	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, outboxSize),
		done: make(chan struct{}),
	}
	c.userID.Store(noUser)
	return c
}

func (c *client) bind(userID int64) {
	c.userID.Store(userID)
}

func (c *client) user() (int64, bool) {
	id := c.userID.Load()
	return id, id != noUser
}

// enqueue never blocks; it reports false when the outbox is full.
func (c *client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(timeout time.Duration, log logrus.FieldLogger) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.WithError(err).Debug("unable to write, dropping connection")
				c.conn.Close()
				return
			}
			log.Debugf("\t< %s", payload)
		}
	}
}
