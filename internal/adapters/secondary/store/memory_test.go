package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthurdotwork/signaling/internal/adapters/secondary/store"
	"github.com/arthurdotwork/signaling/internal/domain"
)

func TestMemoryRegistry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := store.NewMemoryRegistry()

	t.Run("it should return ErrUnknownConnection for an unregistered id", func(t *testing.T) {
		_, err := registry.Get(ctx, "conn-a")
		require.ErrorIs(t, err, domain.ErrUnknownConnection)

		_, err = registry.SetVoiceActive(ctx, "conn-a", true)
		require.ErrorIs(t, err, domain.ErrUnknownConnection)
	})

	t.Run("it should register an empty slot", func(t *testing.T) {
		require.NoError(t, registry.Register(ctx, "conn-a"))

		conn, err := registry.Get(ctx, "conn-a")
		require.NoError(t, err)
		require.Equal(t, domain.Connection{ID: "conn-a"}, conn)
	})

	t.Run("it should attach and overwrite the profile", func(t *testing.T) {
		profile := domain.Profile{ID: "a", Name: "Alice", Color: "#ff0000"}
		require.NoError(t, registry.Attach(ctx, "conn-a", profile, "r1"))

		renamed := domain.Profile{ID: "a", Name: "Alicia", Color: "#ff0000"}
		require.NoError(t, registry.Attach(ctx, "conn-a", renamed, "r1"))

		conn, err := registry.Get(ctx, "conn-a")
		require.NoError(t, err)
		require.Equal(t, renamed, conn.Profile)
		require.Equal(t, "r1", conn.RoomID)
	})

	t.Run("it should mutate single fields in place", func(t *testing.T) {
		conn, err := registry.SetVoiceActive(ctx, "conn-a", true)
		require.NoError(t, err)
		require.True(t, conn.VoiceActive)

		conn, err = registry.SetScreenSharing(ctx, "conn-a", true)
		require.NoError(t, err)
		require.True(t, conn.ScreenSharing)
		require.True(t, conn.VoiceActive)

		cursor := &domain.Cursor{Line: 1, Column: 2}
		selection := &domain.Selection{StartLine: 1, StartColumn: 2, EndLine: 3, EndColumn: 4}
		conn, err = registry.SetCursor(ctx, "conn-a", cursor, selection)
		require.NoError(t, err)
		require.Equal(t, cursor, conn.Profile.Cursor)
		require.Equal(t, selection, conn.Profile.Selection)
	})

	t.Run("it should remove the entry", func(t *testing.T) {
		require.NoError(t, registry.Remove(ctx, "conn-a"))

		_, err := registry.Get(ctx, "conn-a")
		require.ErrorIs(t, err, domain.ErrUnknownConnection)
	})
}

func TestMemoryRoomDirectory(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rooms := store.NewMemoryRoomDirectory()

	t.Run("it should create the room on first join", func(t *testing.T) {
		require.NoError(t, rooms.Join(ctx, "r1", "conn-a"))
		require.NoError(t, rooms.Join(ctx, "r1", "conn-b"))
		require.NoError(t, rooms.Join(ctx, "r1", "conn-b"))

		members, err := rooms.Members(ctx, "r1")
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"conn-a", "conn-b"}, members)

		byID, err := rooms.Rooms(ctx)
		require.NoError(t, err)
		require.Equal(t, map[string]int{"r1": 2}, byID)
	})

	t.Run("it should tolerate leaving an absent room", func(t *testing.T) {
		require.NoError(t, rooms.Leave(ctx, "r2", "conn-a"))
	})

	t.Run("it should delete the room with the last member", func(t *testing.T) {
		require.NoError(t, rooms.Leave(ctx, "r1", "conn-a"))

		byID, err := rooms.Rooms(ctx)
		require.NoError(t, err)
		require.Equal(t, map[string]int{"r1": 1}, byID)

		require.NoError(t, rooms.Leave(ctx, "r1", "conn-b"))

		byID, err = rooms.Rooms(ctx)
		require.NoError(t, err)
		require.Empty(t, byID)

		members, err := rooms.Members(ctx, "r1")
		require.NoError(t, err)
		require.Empty(t, members)
	})
}
