package domain

import (
	"context"
	"errors"
)

// ErrUnknownConnection marks operations against a connection id the registry
// does not hold. Callers treat it as an expected race with disconnect and
// drop the event silently.
var ErrUnknownConnection = errors.New("unknown connection")

// Registry is the single source of truth for who is online and where.
type Registry interface {
	Register(ctx context.Context, connID string) error
	Attach(ctx context.Context, connID string, profile Profile, roomID string) error
	Get(ctx context.Context, connID string) (Connection, error)
	SetVoiceActive(ctx context.Context, connID string, active bool) (Connection, error)
	SetScreenSharing(ctx context.Context, connID string, sharing bool) (Connection, error)
	SetCursor(ctx context.Context, connID string, cursor *Cursor, selection *Selection) (Connection, error)
	Remove(ctx context.Context, connID string) error
}

// RoomDirectory maps room ids to member connection ids. An empty room never
// survives a Leave; the entry is removed in the same step.
type RoomDirectory interface {
	Join(ctx context.Context, roomID, connID string) error
	Leave(ctx context.Context, roomID, connID string) error
	Members(ctx context.Context, roomID string) ([]string, error)
	Rooms(ctx context.Context) (map[string]int, error)
}

// Broadcaster publishes an event towards its audience. The loopback
// implementation dispatches in-process; the redis implementation publishes to
// the shared bus so every node can deliver to its local connections.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev Event) error
}

// Messenger delivers named events to a single connection.
type Messenger interface {
	Send(ctx context.Context, event string, payload []byte) error
}
