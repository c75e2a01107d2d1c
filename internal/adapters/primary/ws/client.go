package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	infraws "github.com/arthurdotwork/signaling/internal/infrastructure/ws"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the connection is dead.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 64 KB covers the largest SDP payloads with room to spare.
	maxMessageSize = 64 * 1024
)

// client is one upgraded websocket connection. It implements
// domain.Messenger; the read side is driven by the handler.
type client struct {
	id     string
	writer *infraws.ThreadSafeWriter
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:     id,
		writer: infraws.NewThreadSafeWriter(conn),
	}
}

func (c *client) Send(ctx context.Context, event string, payload []byte) error {
	return c.writer.WriteJSONDeadline(Envelope{
		Event: event,
		Data:  json.RawMessage(payload),
	}, time.Now().Add(writeWait))
}

// ping keeps the connection alive until ctx is canceled. Control frames are
// safe to write concurrently with the dispatcher's JSON frames.
func (c *client) ping(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writer.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
