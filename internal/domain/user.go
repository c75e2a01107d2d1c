package domain

// Cursor is a caret position inside the shared editor.
type Cursor struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Selection is a text range inside the shared editor.
type Selection struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// Profile is the caller-supplied identity attached to a connection on join.
// It is not validated or deduplicated; two connections may claim the same name.
type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	Avatar    string     `json:"avatar,omitempty"`
	Cursor    *Cursor    `json:"cursor,omitempty"`
	Selection *Selection `json:"selection,omitempty"`
}

// Connection is one live transport session. It is owned by the registry;
// everything else refers to it by id only.
type Connection struct {
	ID            string  `json:"id"`
	Profile       Profile `json:"profile"`
	RoomID        string  `json:"roomId,omitempty"`
	VoiceActive   bool    `json:"voiceActive,omitempty"`
	ScreenSharing bool    `json:"screenSharing,omitempty"`
}

// Member is the wire-facing view of a connection inside a room: the profile
// plus the transport-level identifiers peers need to address it.
type Member struct {
	Profile
	ConnectionID  string `json:"connectionId"`
	RoomID        string `json:"roomId,omitempty"`
	VoiceActive   bool   `json:"voiceChatActive,omitempty"`
	ScreenSharing bool   `json:"screenSharing,omitempty"`
}

func (c Connection) Member() Member {
	return Member{
		Profile:       c.Profile,
		ConnectionID:  c.ID,
		RoomID:        c.RoomID,
		VoiceActive:   c.VoiceActive,
		ScreenSharing: c.ScreenSharing,
	}
}
