package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ThreadSafeWriter serializes writes to a websocket connection so the
// dispatcher can deliver from any goroutine. Reads stay single-goroutine.
type ThreadSafeWriter struct {
	*websocket.Conn
	sync.Mutex
}

func NewThreadSafeWriter(conn *websocket.Conn) *ThreadSafeWriter {
	return &ThreadSafeWriter{Conn: conn}
}

func (t *ThreadSafeWriter) WriteJSON(val any) error {
	t.Lock()
	defer t.Unlock()

	return t.Conn.WriteJSON(val)
}

// WriteJSONDeadline bounds how long a slow consumer can stall a fan-out.
func (t *ThreadSafeWriter) WriteJSONDeadline(val any, deadline time.Time) error {
	t.Lock()
	defer t.Unlock()

	if err := t.Conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return t.Conn.WriteJSON(val)
}

func (t *ThreadSafeWriter) Close() error {
	return t.Conn.Close()
}
