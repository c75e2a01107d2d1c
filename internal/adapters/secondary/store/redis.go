package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/arthurdotwork/signaling/internal/domain"
	"github.com/arthurdotwork/signaling/internal/infrastructure/redis"
)

const (
	connKeyPrefix = "signaling:conn:"
	roomKeyPrefix = "signaling:room:"
	roomIndexKey  = "signaling:rooms"
)

// leaveScript removes a member and deletes the room the moment it empties,
// in one atomic step on the redis side.
var leaveScript = goredis.NewScript(`
redis.call('SREM', KEYS[1], ARGV[1])
if redis.call('SCARD', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
	redis.call('SREM', KEYS[2], ARGV[2])
end
return 0
`)

// RedisRegistry is the shared-store registry for multi-process deployments.
// Field updates are read-modify-write: presence flags are best-effort state,
// and each connection is only ever written by the node that owns its socket.
type RedisRegistry struct {
	client *redis.Client
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func connKey(connID string) string {
	return connKeyPrefix + connID
}

func (s *RedisRegistry) Register(ctx context.Context, connID string) error {
	payload, err := json.Marshal(domain.Connection{ID: connID})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.client.SetNX(ctx, connKey(connID), payload, 0).Err(); err != nil {
		return fmt.Errorf("client.SetNX: %w", err)
	}

	return nil
}

func (s *RedisRegistry) Attach(ctx context.Context, connID string, profile domain.Profile, roomID string) error {
	conn, err := s.Get(ctx, connID)
	if err != nil && !errors.Is(err, domain.ErrUnknownConnection) {
		return err
	}

	conn.ID = connID
	conn.Profile = profile
	conn.RoomID = roomID

	return s.set(ctx, conn)
}

func (s *RedisRegistry) Get(ctx context.Context, connID string) (domain.Connection, error) {
	payload, err := s.client.Get(ctx, connKey(connID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.Connection{}, domain.ErrUnknownConnection
		}

		return domain.Connection{}, fmt.Errorf("client.Get: %w", err)
	}

	var conn domain.Connection
	if err := json.Unmarshal(payload, &conn); err != nil {
		return domain.Connection{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return conn, nil
}

func (s *RedisRegistry) SetVoiceActive(ctx context.Context, connID string, active bool) (domain.Connection, error) {
	return s.update(ctx, connID, func(conn *domain.Connection) {
		conn.VoiceActive = active
	})
}

func (s *RedisRegistry) SetScreenSharing(ctx context.Context, connID string, sharing bool) (domain.Connection, error) {
	return s.update(ctx, connID, func(conn *domain.Connection) {
		conn.ScreenSharing = sharing
	})
}

func (s *RedisRegistry) SetCursor(ctx context.Context, connID string, cursor *domain.Cursor, selection *domain.Selection) (domain.Connection, error) {
	return s.update(ctx, connID, func(conn *domain.Connection) {
		conn.Profile.Cursor = cursor
		conn.Profile.Selection = selection
	})
}

func (s *RedisRegistry) Remove(ctx context.Context, connID string) error {
	if err := s.client.Del(ctx, connKey(connID)).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}

func (s *RedisRegistry) update(ctx context.Context, connID string, apply func(*domain.Connection)) (domain.Connection, error) {
	conn, err := s.Get(ctx, connID)
	if err != nil {
		return domain.Connection{}, err
	}

	apply(&conn)

	if err := s.set(ctx, conn); err != nil {
		return domain.Connection{}, err
	}

	return conn, nil
}

func (s *RedisRegistry) set(ctx context.Context, conn domain.Connection) error {
	payload, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := s.client.Set(ctx, connKey(conn.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

// RedisRoomDirectory keeps room membership in redis sets plus an index set of
// live room ids, so every node resolves the same audiences.
type RedisRoomDirectory struct {
	client *redis.Client
}

func NewRedisRoomDirectory(client *redis.Client) *RedisRoomDirectory {
	return &RedisRoomDirectory{client: client}
}

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func (s *RedisRoomDirectory) Join(ctx context.Context, roomID, connID string) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, roomKey(roomID), connID)
	pipe.SAdd(ctx, roomIndexKey, roomID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipe.Exec: %w", err)
	}

	return nil
}

func (s *RedisRoomDirectory) Leave(ctx context.Context, roomID, connID string) error {
	keys := []string{roomKey(roomID), roomIndexKey}
	if err := leaveScript.Run(ctx, s.client, keys, connID, roomID).Err(); err != nil {
		return fmt.Errorf("leaveScript.Run: %w", err)
	}

	return nil
}

func (s *RedisRoomDirectory) Members(ctx context.Context, roomID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("client.SMembers: %w", err)
	}

	return members, nil
}

func (s *RedisRoomDirectory) Rooms(ctx context.Context) (map[string]int, error) {
	roomIDs, err := s.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("client.SMembers: %w", err)
	}

	rooms := make(map[string]int, len(roomIDs))
	for _, roomID := range roomIDs {
		count, err := s.client.SCard(ctx, roomKey(roomID)).Result()
		if err != nil {
			return nil, fmt.Errorf("client.SCard: %w", err)
		}

		if count > 0 {
			rooms[roomID] = int(count)
		}
	}

	return rooms, nil
}
