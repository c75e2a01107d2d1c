package domain_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthurdotwork/signaling/internal/adapters/secondary/broadcaster"
	"github.com/arthurdotwork/signaling/internal/adapters/secondary/store"
	"github.com/arthurdotwork/signaling/internal/domain"
)

type frame struct {
	event   string
	payload json.RawMessage
}

// recordingMessenger captures everything delivered to one connection.
type recordingMessenger struct {
	mu     sync.Mutex
	frames []frame
}

func (m *recordingMessenger) Send(_ context.Context, event string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames = append(m.frames, frame{event: event, payload: json.RawMessage(payload)})
	return nil
}

func (m *recordingMessenger) take() []frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	taken := m.frames
	m.frames = nil
	return taken
}

func (m *recordingMessenger) single(t *testing.T, event string) json.RawMessage {
	t.Helper()

	frames := m.take()
	require.Len(t, frames, 1)
	require.Equal(t, event, frames[0].event)
	return frames[0].payload
}

func (m *recordingMessenger) silent(t *testing.T) {
	t.Helper()

	require.Empty(t, m.take())
}

type harness struct {
	registry   *store.MemoryRegistry
	rooms      *store.MemoryRoomDirectory
	dispatcher *domain.Dispatcher
	service    *domain.SignalingService
}

func newHarness() *harness {
	registry := store.NewMemoryRegistry()
	rooms := store.NewMemoryRoomDirectory()
	dispatcher := domain.NewDispatcher(rooms)
	bus := broadcaster.NewLocal(dispatcher)

	return &harness{
		registry:   registry,
		rooms:      rooms,
		dispatcher: dispatcher,
		service:    domain.NewSignalingService(registry, rooms, bus, dispatcher),
	}
}

func (h *harness) connect(t *testing.T, ctx context.Context, connID string) *recordingMessenger {
	t.Helper()

	require.NoError(t, h.service.Connect(ctx, connID))

	m := &recordingMessenger{}
	h.dispatcher.Attach(connID, m)
	return m
}

// requireLockstep asserts that every room member has a registry entry claiming
// that room, between any two handled events.
func (h *harness) requireLockstep(t *testing.T, ctx context.Context) {
	t.Helper()

	rooms, err := h.rooms.Rooms(ctx)
	require.NoError(t, err)

	for roomID, count := range rooms {
		require.Positive(t, count, "room %s retained with no members", roomID)

		members, err := h.rooms.Members(ctx, roomID)
		require.NoError(t, err)
		require.Len(t, members, count)

		for _, connID := range members {
			conn, err := h.registry.Get(ctx, connID)
			require.NoError(t, err)
			require.Equal(t, roomID, conn.RoomID)
		}
	}
}

func TestSignaling_RoomLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness()

	alice := h.connect(t, ctx, "conn-a")
	bob := h.connect(t, ctx, "conn-b")

	t.Run("the first joiner gets an empty roster and no echo", func(t *testing.T) {
		snapshot, err := h.service.Join(ctx, "conn-a", "r1", domain.Profile{ID: "a", Name: "Alice"})
		require.NoError(t, err)
		require.Empty(t, snapshot)

		alice.silent(t)
		h.requireLockstep(t, ctx)
	})

	t.Run("the second joiner gets the prior roster and the room hears user-joined", func(t *testing.T) {
		snapshot, err := h.service.Join(ctx, "conn-b", "r1", domain.Profile{ID: "b", Name: "Bob"})
		require.NoError(t, err)
		require.Len(t, snapshot, 1)
		require.Equal(t, "Alice", snapshot[0].Name)
		require.Equal(t, "conn-a", snapshot[0].ConnectionID)

		payload := alice.single(t, domain.EventUserJoined)

		var joined domain.Member
		require.NoError(t, json.Unmarshal(payload, &joined))
		require.Equal(t, "conn-b", joined.ConnectionID)
		require.Equal(t, "Bob", joined.Name)

		bob.silent(t)
		h.requireLockstep(t, ctx)
	})

	t.Run("a voice toggle reaches everyone but the actor", func(t *testing.T) {
		require.NoError(t, h.service.SetVoiceActive(ctx, "conn-b", true))

		payload := alice.single(t, domain.EventUserVoiceStatus)

		var status domain.VoiceStatusPayload
		require.NoError(t, json.Unmarshal(payload, &status))
		require.Equal(t, "conn-b", status.UserID)
		require.True(t, status.IsActive)

		bob.silent(t)
	})

	t.Run("a cursor update reaches everyone but the actor", func(t *testing.T) {
		cursor := &domain.Cursor{Line: 10, Column: 3}
		require.NoError(t, h.service.UpdateCursor(ctx, "conn-a", cursor, nil))

		payload := bob.single(t, domain.EventUserCursorUpdate)

		var update domain.CursorUpdatePayload
		require.NoError(t, json.Unmarshal(payload, &update))
		require.Equal(t, "conn-a", update.UserID)
		require.Equal(t, cursor, update.Cursor)

		alice.silent(t)
	})

	t.Run("a signal is unicast to its target only", func(t *testing.T) {
		signal := json.RawMessage(`{"type":"offer"}`)
		require.NoError(t, h.service.Signal(ctx, "conn-a", "conn-b", signal))

		payload := bob.single(t, domain.EventWebRTCSignal)

		var relayed domain.SignalPayload
		require.NoError(t, json.Unmarshal(payload, &relayed))
		require.Equal(t, "conn-a", relayed.FromID)
		require.JSONEq(t, string(signal), string(relayed.Signal))

		alice.silent(t)
	})

	t.Run("a signal to an unknown target is dropped without an error", func(t *testing.T) {
		require.NoError(t, h.service.Signal(ctx, "conn-a", "conn-x", json.RawMessage(`{}`)))

		alice.silent(t)
		bob.silent(t)
	})

	t.Run("a game invite is unicast and its response fans out to the room", func(t *testing.T) {
		require.NoError(t, h.service.GameInvite(ctx, "conn-a", "conn-b", "code-golf"))

		payload := bob.single(t, domain.EventGameInviteReceived)

		var invite domain.GameInvitePayload
		require.NoError(t, json.Unmarshal(payload, &invite))
		require.NotEmpty(t, invite.ID)
		require.Equal(t, "code-golf", invite.Type)
		require.Equal(t, "conn-a", invite.Sender.ConnectionID)
		alice.silent(t)

		require.NoError(t, h.service.GameInviteResponse(ctx, "conn-b", invite.ID, "accepted"))

		payload = alice.single(t, domain.EventGameInviteResponse)

		var response domain.GameInviteResponsePayload
		require.NoError(t, json.Unmarshal(payload, &response))
		require.Equal(t, invite.ID, response.InviteID)
		require.Equal(t, "accepted", response.Response)
		require.Equal(t, "conn-b", response.UserID)
		bob.silent(t)
	})

	t.Run("a disconnect notifies the members present just before removal", func(t *testing.T) {
		h.dispatcher.Detach("conn-b")
		require.NoError(t, h.service.Disconnect(ctx, "conn-b"))

		payload := alice.single(t, domain.EventUserLeft)

		var left domain.Member
		require.NoError(t, json.Unmarshal(payload, &left))
		require.Equal(t, "conn-b", left.ConnectionID)

		members, err := h.rooms.Members(ctx, "r1")
		require.NoError(t, err)
		require.Equal(t, []string{"conn-a"}, members)

		_, err = h.registry.Get(ctx, "conn-b")
		require.ErrorIs(t, err, domain.ErrUnknownConnection)

		h.requireLockstep(t, ctx)
	})

	t.Run("the room vanishes when the last member leaves", func(t *testing.T) {
		require.NoError(t, h.service.Leave(ctx, "conn-a"))

		rooms, err := h.rooms.Rooms(ctx)
		require.NoError(t, err)
		require.NotContains(t, rooms, "r1")

		alice.silent(t)
		h.requireLockstep(t, ctx)
	})
}

func TestSignaling_DoubleJoinMovesTheConnection(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness()

	alice := h.connect(t, ctx, "conn-a")
	bob := h.connect(t, ctx, "conn-b")

	_, err := h.service.Join(ctx, "conn-a", "r1", domain.Profile{ID: "a", Name: "Alice"})
	require.NoError(t, err)
	_, err = h.service.Join(ctx, "conn-b", "r1", domain.Profile{ID: "b", Name: "Bob"})
	require.NoError(t, err)
	alice.take()

	// Second join without an intervening leave: the connection must move, not
	// end up referenced by two rooms.
	snapshot, err := h.service.Join(ctx, "conn-b", "r2", domain.Profile{ID: "b", Name: "Bob"})
	require.NoError(t, err)
	require.Empty(t, snapshot)

	payload := alice.single(t, domain.EventUserLeft)

	var left domain.Member
	require.NoError(t, json.Unmarshal(payload, &left))
	require.Equal(t, "conn-b", left.ConnectionID)
	bob.silent(t)

	members, err := h.rooms.Members(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, []string{"conn-a"}, members)

	members, err = h.rooms.Members(ctx, "r2")
	require.NoError(t, err)
	require.Equal(t, []string{"conn-b"}, members)

	h.requireLockstep(t, ctx)
}

func TestSignaling_StaleToggleIsDropped(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness()

	alice := h.connect(t, ctx, "conn-a")
	_, err := h.service.Join(ctx, "conn-a", "r1", domain.Profile{ID: "a", Name: "Alice"})
	require.NoError(t, err)

	// Toggle from a connection that never joined.
	ghost := h.connect(t, ctx, "conn-g")
	require.NoError(t, h.service.SetScreenSharing(ctx, "conn-g", true))
	alice.silent(t)
	ghost.silent(t)

	// Toggle racing a disconnect.
	require.NoError(t, h.service.Disconnect(ctx, "conn-g"))
	require.NoError(t, h.service.SetVoiceActive(ctx, "conn-g", true))
	alice.silent(t)
}
