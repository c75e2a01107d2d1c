package ws

import (
	"encoding/json"

	"github.com/arthurdotwork/signaling/internal/domain"
)

// Client to server event names. Server to client names live in domain.
const (
	eventJoinRoom           = "join-room"
	eventLeaveRoom          = "leave-room"
	eventWebRTCSignal       = "webrtc-signal"
	eventVoiceChatToggle    = "voice-chat-toggle"
	eventScreenShareToggle  = "screen-share-toggle"
	eventCursorUpdate       = "cursor-update"
	eventGameInvite         = "game-invite"
	eventGameInviteResponse = "game-invite-response"
)

// Envelope is the wire frame in both directions: a named event and its
// structured payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinRoomPayload struct {
	RoomID string         `json:"roomId"`
	User   domain.Profile `json:"user"`
}

type leaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

type signalPayload struct {
	RoomID   string          `json:"roomId"`
	Signal   json.RawMessage `json:"signal"`
	TargetID string          `json:"targetId"`
}

type voiceTogglePayload struct {
	RoomID   string `json:"roomId"`
	IsActive bool   `json:"isActive"`
}

type screenShareTogglePayload struct {
	RoomID    string `json:"roomId"`
	IsSharing bool   `json:"isSharing"`
}

type cursorUpdatePayload struct {
	RoomID    string            `json:"roomId"`
	Cursor    *domain.Cursor    `json:"cursor"`
	Selection *domain.Selection `json:"selection"`
}

type gameInvitePayload struct {
	RoomID       string `json:"roomId"`
	GameType     string `json:"gameType"`
	TargetUserID string `json:"targetUserId"`
}

type gameInviteResponsePayload struct {
	InviteID string `json:"inviteId"`
	Response string `json:"response"`
	RoomID   string `json:"roomId"`
}
