package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var errSubscriberClosed = errors.New("ws: subscriber closed")

// subscriber serializes writes onto a websocket connection. The hub's
// broadcast path and the read loop both write frames, but
// gorilla/websocket permits only one concurrent writer.
type subscriber struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{conn: conn}
}

// WritePacket sends one binary frame. A frame that cannot be flushed
// within writeWait fails instead of blocking the hub.
func (s *subscriber) WritePacket(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSubscriberClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close is idempotent; the hub and the read loop may both call it.
func (s *subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
