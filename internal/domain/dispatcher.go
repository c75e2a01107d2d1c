package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DeliveryOutcome is the internal result of a dispatch. The wire protocol
// stays silent about failed deliveries; the outcome exists so the at-most-once
// contract can be observed in tests and logs.
type DeliveryOutcome int

const (
	Delivered DeliveryOutcome = iota
	TargetUnreachable
)

// Dispatcher fans events out to the connections attached to this process.
// It owns the messenger table; the registry and room directory may live in a
// shared store, but a transport stream is only ever local.
type Dispatcher struct {
	rooms RoomDirectory

	mu         sync.RWMutex
	messengers map[string]Messenger
}

func NewDispatcher(rooms RoomDirectory) *Dispatcher {
	return &Dispatcher{
		rooms:      rooms,
		messengers: make(map[string]Messenger),
	}
}

func (d *Dispatcher) Attach(connID string, m Messenger) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.messengers[connID] = m
}

func (d *Dispatcher) Detach(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.messengers, connID)
}

func (d *Dispatcher) messenger(connID string) (Messenger, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.messengers[connID]
	return m, ok
}

// Dispatch delivers an event to its audience: the target connection when
// TargetID is set, otherwise every room member except the sender. A missing
// target is not an error; relays are fire and forget.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (DeliveryOutcome, error) {
	if ev.TargetID != "" {
		m, ok := d.messenger(ev.TargetID)
		if !ok {
			slog.DebugContext(ctx, "dropping event for unreachable target", "event", ev.Name, "target_id", ev.TargetID)
			return TargetUnreachable, nil
		}

		if err := m.Send(ctx, ev.Name, ev.Payload); err != nil {
			slog.ErrorContext(ctx, "error sending event", "event", ev.Name, "target_id", ev.TargetID, "error", err)
			return TargetUnreachable, nil
		}

		return Delivered, nil
	}

	members, err := d.rooms.Members(ctx, ev.RoomID)
	if err != nil {
		return TargetUnreachable, fmt.Errorf("rooms.Members: %w", err)
	}

	for _, connID := range members {
		if connID == ev.SenderID {
			continue
		}

		m, ok := d.messenger(connID)
		if !ok {
			continue
		}

		if err := m.Send(ctx, ev.Name, ev.Payload); err != nil {
			slog.ErrorContext(ctx, "error sending event", "event", ev.Name, "conn_id", connID, "error", err)
		}
	}

	return Delivered, nil
}

// Shutdown notifies every attached connection that the server is going away.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for connID, m := range d.messengers {
		if err := m.Send(ctx, EventServerClosing, []byte(`{}`)); err != nil {
			slog.DebugContext(ctx, "error notifying connection of shutdown", "conn_id", connID, "error", err)
		}
	}
}
