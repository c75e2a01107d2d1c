package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Signal forwards an opaque WebRTC payload to exactly one target connection,
// untouched except for the sender id. Unknown targets are dropped without an
// error frame; the upper protocol tolerates signaling loss.
func (s *SignalingService) Signal(ctx context.Context, senderID, targetID string, signal json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := NewEvent(EventWebRTCSignal, "", senderID, targetID, SignalPayload{Signal: signal, FromID: senderID})
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

// GameInvite sends an invitation with a generated id to one target
// connection. Senders without an attached profile are dropped silently.
func (s *SignalingService) GameInvite(ctx context.Context, senderID, targetID, gameType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.registry.Get(ctx, senderID)
	if err != nil {
		if errors.Is(err, ErrUnknownConnection) {
			slog.DebugContext(ctx, "dropping invite from unknown sender", "conn_id", senderID)
			return nil
		}

		return fmt.Errorf("registry.Get: %w", err)
	}

	payload := GameInvitePayload{
		ID:     uuid.NewString(),
		Type:   gameType,
		Sender: sender.Member(),
		RoomID: sender.RoomID,
	}

	ev, err := NewEvent(EventGameInviteReceived, "", senderID, targetID, payload)
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}

// GameInviteResponse broadcasts an invite answer to the sender's room, minus
// the sender. Responses from unjoined connections are dropped.
func (s *SignalingService) GameInviteResponse(ctx context.Context, senderID, inviteID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.registry.Get(ctx, senderID)
	if err != nil {
		if errors.Is(err, ErrUnknownConnection) {
			slog.DebugContext(ctx, "dropping invite response from unknown sender", "conn_id", senderID)
			return nil
		}

		return fmt.Errorf("registry.Get: %w", err)
	}

	if sender.RoomID == "" {
		return nil
	}

	payload := GameInviteResponsePayload{InviteID: inviteID, Response: response, UserID: senderID}

	ev, err := NewEvent(EventGameInviteResponse, sender.RoomID, senderID, "", payload)
	if err != nil {
		return err
	}

	if err := s.broadcaster.Broadcast(ctx, ev); err != nil {
		return fmt.Errorf("broadcaster.Broadcast: %w", err)
	}

	return nil
}
