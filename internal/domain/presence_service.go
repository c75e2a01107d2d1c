package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// SignalingService coordinates the registry, the room directory and the
// broadcast fan-out. Every inbound event runs to completion under a single
// mutex, so the registry and directory are always observed in lockstep
// between events.
type SignalingService struct {
	mu          sync.Mutex
	registry    Registry
	rooms       RoomDirectory
	broadcaster Broadcaster
	dispatcher  *Dispatcher
}

func NewSignalingService(registry Registry, rooms RoomDirectory, broadcaster Broadcaster, dispatcher *Dispatcher) *SignalingService {
	return &SignalingService{
		registry:    registry,
		rooms:       rooms,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
	}
}

// Connect reserves a registry slot for a freshly upgraded transport. Nothing
// is visible to other connections until the client joins a room.
func (s *SignalingService) Connect(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.registry.Register(ctx, connID); err != nil {
		return fmt.Errorf("registry.Register: %w", err)
	}

	return nil
}

// Join puts the connection into the room and returns the roster snapshot of
// the members that were already there. The joiner never appears in its own
// snapshot and never receives the user-joined broadcast. A connection already
// in another room leaves it implicitly first.
func (s *SignalingService) Join(ctx context.Context, connID, roomID string, profile Profile) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.Get(ctx, connID)
	if err != nil && !errors.Is(err, ErrUnknownConnection) {
		return nil, fmt.Errorf("registry.Get: %w", err)
	}

	rejoining := conn.RoomID == roomID
	if conn.RoomID != "" && !rejoining {
		if err := s.leaveLocked(ctx, conn); err != nil {
			return nil, fmt.Errorf("leave previous room: %w", err)
		}
	}

	if err := s.registry.Attach(ctx, connID, profile, roomID); err != nil {
		return nil, fmt.Errorf("registry.Attach: %w", err)
	}

	if err := s.rooms.Join(ctx, roomID, connID); err != nil {
		return nil, fmt.Errorf("rooms.Join: %w", err)
	}

	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("rooms.Members: %w", err)
	}

	snapshot := make([]Member, 0, len(members))
	for _, id := range members {
		if id == connID {
			continue
		}

		other, err := s.registry.Get(ctx, id)
		if err != nil {
			continue
		}

		snapshot = append(snapshot, other.Member())
	}

	slog.DebugContext(ctx, "connection joined room", "conn_id", connID, "room_id", roomID, "members", len(members))

	if rejoining {
		return snapshot, nil
	}

	joined := Connection{ID: connID, Profile: profile, RoomID: roomID}

	ev, err := NewEvent(EventUserJoined, roomID, connID, "", joined.Member())
	if err != nil {
		return nil, err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return nil, fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return snapshot, nil
}

// Leave removes the connection from its current room and notifies the
// remaining members. A connection that never joined is a silent no-op.
func (s *SignalingService) Leave(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.Get(ctx, connID)
	if err != nil {
		if errors.Is(err, ErrUnknownConnection) {
			return nil
		}

		return fmt.Errorf("registry.Get: %w", err)
	}

	if err := s.leaveLocked(ctx, conn); err != nil {
		return err
	}

	if conn.RoomID == "" {
		return nil
	}

	if err := s.registry.Attach(ctx, connID, conn.Profile, ""); err != nil {
		return fmt.Errorf("registry.Attach: %w", err)
	}

	return nil
}

// Disconnect runs the full leave-cleanup path for a closed transport. The
// registry entry is removed regardless of what state the connection was in.
func (s *SignalingService) Disconnect(ctx context.Context, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.Get(ctx, connID)
	if err != nil && !errors.Is(err, ErrUnknownConnection) {
		return fmt.Errorf("registry.Get: %w", err)
	}

	if err == nil {
		if err := s.leaveLocked(ctx, conn); err != nil {
			return err
		}
	}

	if err := s.registry.Remove(ctx, connID); err != nil {
		return fmt.Errorf("registry.Remove: %w", err)
	}

	slog.DebugContext(ctx, "connection disconnected", "conn_id", connID)
	return nil
}

// leaveLocked removes the connection from its room, deleting the room when it
// empties, and broadcasts user-left to whoever remains. Caller holds s.mu.
func (s *SignalingService) leaveLocked(ctx context.Context, conn Connection) error {
	if conn.RoomID == "" {
		return nil
	}

	if err := s.rooms.Leave(ctx, conn.RoomID, conn.ID); err != nil {
		return fmt.Errorf("rooms.Leave: %w", err)
	}

	ev, err := NewEvent(EventUserLeft, conn.RoomID, conn.ID, "", conn.Member())
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

// SetVoiceActive flips the voice flag and notifies the rest of the room.
// Toggles racing a disconnect or arriving before a join are dropped.
func (s *SignalingService) SetVoiceActive(ctx context.Context, connID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.SetVoiceActive(ctx, connID, active)
	if err != nil {
		return s.dropStaleToggle(ctx, "voice-chat-toggle", connID, err)
	}

	if conn.RoomID == "" {
		return nil
	}

	ev, err := NewEvent(EventUserVoiceStatus, conn.RoomID, connID, "", VoiceStatusPayload{UserID: connID, IsActive: active})
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

// SetScreenSharing flips the screen-share flag and notifies the rest of the room.
func (s *SignalingService) SetScreenSharing(ctx context.Context, connID string, sharing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.SetScreenSharing(ctx, connID, sharing)
	if err != nil {
		return s.dropStaleToggle(ctx, "screen-share-toggle", connID, err)
	}

	if conn.RoomID == "" {
		return nil
	}

	ev, err := NewEvent(EventUserScreenShare, conn.RoomID, connID, "", ScreenSharePayload{UserID: connID, IsSharing: sharing})
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

// UpdateCursor stores the cursor and selection and relays them to the room.
func (s *SignalingService) UpdateCursor(ctx context.Context, connID string, cursor *Cursor, selection *Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.SetCursor(ctx, connID, cursor, selection)
	if err != nil {
		return s.dropStaleToggle(ctx, "cursor-update", connID, err)
	}

	if conn.RoomID == "" {
		return nil
	}

	ev, err := NewEvent(EventUserCursorUpdate, conn.RoomID, connID, "", CursorUpdatePayload{UserID: connID, Cursor: cursor, Selection: selection})
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

func (s *SignalingService) dropStaleToggle(ctx context.Context, event, connID string, err error) error {
	if errors.Is(err, ErrUnknownConnection) {
		slog.DebugContext(ctx, "dropping stale toggle", "event", event, "conn_id", connID)
		return nil
	}

	return fmt.Errorf("registry update: %w", err)
}

// Close tells every local connection the server is going away.
func (s *SignalingService) Close(ctx context.Context) error {
	s.dispatcher.Shutdown(ctx)
	return nil
}
