package store

import (
	"context"
	"sync"

	"github.com/arthurdotwork/signaling/internal/domain"
)

// MemoryRegistry is the single-process connection registry. Entries are
// copied in and out; callers never hold a reference into the map.
type MemoryRegistry struct {
	connections map[string]domain.Connection
	sync.RWMutex
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		connections: make(map[string]domain.Connection),
	}
}

func (s *MemoryRegistry) Register(ctx context.Context, connID string) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.connections[connID]; ok {
		return nil
	}

	s.connections[connID] = domain.Connection{ID: connID}
	return nil
}

func (s *MemoryRegistry) Attach(ctx context.Context, connID string, profile domain.Profile, roomID string) error {
	s.Lock()
	defer s.Unlock()

	conn := s.connections[connID]
	conn.ID = connID
	conn.Profile = profile
	conn.RoomID = roomID
	s.connections[connID] = conn

	return nil
}

func (s *MemoryRegistry) Get(ctx context.Context, connID string) (domain.Connection, error) {
	s.RLock()
	defer s.RUnlock()

	conn, ok := s.connections[connID]
	if !ok {
		return domain.Connection{}, domain.ErrUnknownConnection
	}

	return conn, nil
}

func (s *MemoryRegistry) SetVoiceActive(ctx context.Context, connID string, active bool) (domain.Connection, error) {
	return s.update(connID, func(conn *domain.Connection) {
		conn.VoiceActive = active
	})
}

func (s *MemoryRegistry) SetScreenSharing(ctx context.Context, connID string, sharing bool) (domain.Connection, error) {
	return s.update(connID, func(conn *domain.Connection) {
		conn.ScreenSharing = sharing
	})
}

func (s *MemoryRegistry) SetCursor(ctx context.Context, connID string, cursor *domain.Cursor, selection *domain.Selection) (domain.Connection, error) {
	return s.update(connID, func(conn *domain.Connection) {
		conn.Profile.Cursor = cursor
		conn.Profile.Selection = selection
	})
}

func (s *MemoryRegistry) Remove(ctx context.Context, connID string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.connections, connID)
	return nil
}

func (s *MemoryRegistry) update(connID string, apply func(*domain.Connection)) (domain.Connection, error) {
	s.Lock()
	defer s.Unlock()

	conn, ok := s.connections[connID]
	if !ok {
		return domain.Connection{}, domain.ErrUnknownConnection
	}

	apply(&conn)
	s.connections[connID] = conn

	return conn, nil
}

// MemoryRoomDirectory maps room ids to member sets. Removing the last member
// deletes the room in the same step, so an empty room is never observable.
type MemoryRoomDirectory struct {
	rooms map[string]map[string]struct{}
	sync.RWMutex
}

func NewMemoryRoomDirectory() *MemoryRoomDirectory {
	return &MemoryRoomDirectory{
		rooms: make(map[string]map[string]struct{}),
	}
}

func (s *MemoryRoomDirectory) Join(ctx context.Context, roomID, connID string) error {
	s.Lock()
	defer s.Unlock()

	members, ok := s.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		s.rooms[roomID] = members
	}

	members[connID] = struct{}{}
	return nil
}

func (s *MemoryRoomDirectory) Leave(ctx context.Context, roomID, connID string) error {
	s.Lock()
	defer s.Unlock()

	members, ok := s.rooms[roomID]
	if !ok {
		return nil
	}

	delete(members, connID)
	if len(members) == 0 {
		delete(s.rooms, roomID)
	}

	return nil
}

func (s *MemoryRoomDirectory) Members(ctx context.Context, roomID string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()

	members := make([]string, 0, len(s.rooms[roomID]))
	for connID := range s.rooms[roomID] {
		members = append(members, connID)
	}

	return members, nil
}

func (s *MemoryRoomDirectory) Rooms(ctx context.Context) (map[string]int, error) {
	s.RLock()
	defer s.RUnlock()

	rooms := make(map[string]int, len(s.rooms))
	for roomID, members := range s.rooms {
		rooms[roomID] = len(members)
	}

	return rooms, nil
}
