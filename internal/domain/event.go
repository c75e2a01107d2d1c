package domain

import (
	"encoding/json"
	"fmt"
)

// Server to client event names.
const (
	EventRoomUsers          = "room-users"
	EventUserJoined         = "user-joined"
	EventUserLeft           = "user-left"
	EventWebRTCSignal       = "webrtc-signal"
	EventUserVoiceStatus    = "user-voice-status"
	EventUserScreenShare    = "user-screen-share"
	EventUserCursorUpdate   = "user-cursor-update"
	EventGameInviteReceived = "game-invite-received"
	EventGameInviteResponse = "game-invite-response"
	EventServerClosing      = "server-closing"
)

// Event is a routable presence or relay notification. TargetID selects unicast
// delivery; otherwise the event fans out to the room, excluding SenderID.
// The payload is kept pre-marshaled so events survive a bus round-trip intact.
type Event struct {
	Name     string          `json:"name"`
	RoomID   string          `json:"roomId,omitempty"`
	SenderID string          `json:"senderId,omitempty"`
	TargetID string          `json:"targetId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func NewEvent(name, roomID, senderID, targetID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return Event{
		Name:     name,
		RoomID:   roomID,
		SenderID: senderID,
		TargetID: targetID,
		Payload:  raw,
	}, nil
}

type SignalPayload struct {
	Signal json.RawMessage `json:"signal"`
	FromID string          `json:"fromId"`
}

type VoiceStatusPayload struct {
	UserID   string `json:"userId"`
	IsActive bool   `json:"isActive"`
}

type ScreenSharePayload struct {
	UserID    string `json:"userId"`
	IsSharing bool   `json:"isSharing"`
}

type CursorUpdatePayload struct {
	UserID    string     `json:"userId"`
	Cursor    *Cursor    `json:"cursor"`
	Selection *Selection `json:"selection"`
}

type GameInvitePayload struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Sender Member `json:"sender"`
	RoomID string `json:"roomId"`
}

type GameInviteResponsePayload struct {
	InviteID string `json:"inviteId"`
	Response string `json:"response"`
	UserID   string `json:"userId"`
}
