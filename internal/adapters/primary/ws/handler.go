package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"

	"github.com/arthurdotwork/signaling/internal/domain"
)

type SignalingService interface {
	Connect(ctx context.Context, connID string) error
	Join(ctx context.Context, connID, roomID string, profile domain.Profile) ([]domain.Member, error)
	Leave(ctx context.Context, connID string) error
	Disconnect(ctx context.Context, connID string) error
	SetVoiceActive(ctx context.Context, connID string, active bool) error
	SetScreenSharing(ctx context.Context, connID string, sharing bool) error
	UpdateCursor(ctx context.Context, connID string, cursor *domain.Cursor, selection *domain.Selection) error
	Signal(ctx context.Context, senderID, targetID string, signal json.RawMessage) error
	GameInvite(ctx context.Context, senderID, targetID, gameType string) error
	GameInviteResponse(ctx context.Context, senderID, inviteID, response string) error
}

// Handler owns the websocket endpoint: it upgrades requests, assigns the
// connection id, and pumps inbound frames into the signaling service.
type Handler struct {
	service    SignalingService
	dispatcher *domain.Dispatcher
	upgrader   websocket.Upgrader
}

func NewHandler(service SignalingService, dispatcher *domain.Dispatcher, allowedOrigin string) *Handler {
	return &Handler{
		service:    service,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessageSize,
			WriteBufferSize: maxMessageSize,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}

				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *Handler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response().Writer, c.Request(), nil)
	if err != nil {
		return fmt.Errorf("upgrader.Upgrade: %w", err)
	}

	ctx := c.Request().Context()
	connID := uuid.NewString()
	cl := newClient(connID, conn)

	slog.DebugContext(ctx, "client connected", "conn_id", connID, "remote_addr", conn.RemoteAddr())

	if err := h.service.Connect(ctx, connID); err != nil {
		_ = cl.writer.Close()
		return fmt.Errorf("service.Connect: %w", err)
	}

	h.dispatcher.Attach(connID, cl)

	pingCtx, cancelPing := context.WithCancel(ctx)
	go cl.ping(pingCtx)

	h.readLoop(ctx, cl)

	cancelPing()
	h.dispatcher.Detach(connID)

	// The request context is already canceled once the socket dies; cleanup
	// must still run the full leave path.
	cleanupCtx := context.WithoutCancel(ctx)
	if err := h.service.Disconnect(cleanupCtx, connID); err != nil {
		slog.ErrorContext(cleanupCtx, "error disconnecting client", "conn_id", connID, "error", err)
	}

	_ = cl.writer.Close()

	slog.DebugContext(cleanupCtx, "client disconnected", "conn_id", connID)
	return nil
}

func (h *Handler) readLoop(ctx context.Context, cl *client) {
	conn := cl.writer.Conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.DebugContext(ctx, "read error", "conn_id", cl.id, "error", err)
			}

			return
		}

		h.handle(ctx, cl, env)
	}
}

// handle dispatches one inbound frame. Malformed payloads and unknown events
// are dropped without an error frame; those are expected races, not faults.
func (h *Handler) handle(ctx context.Context, cl *client, env Envelope) {
	var err error

	switch env.Event {
	case eventJoinRoom:
		var p joinRoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.RoomID == "" {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		members, joinErr := h.service.Join(ctx, cl.id, p.RoomID, p.User)
		if joinErr != nil {
			err = joinErr
			break
		}

		snapshot, marshalErr := json.Marshal(members)
		if marshalErr != nil {
			err = marshalErr
			break
		}

		err = cl.Send(ctx, domain.EventRoomUsers, snapshot)

	case eventLeaveRoom:
		var p leaveRoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.Leave(ctx, cl.id)

	case eventWebRTCSignal:
		var p signalPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.TargetID == "" {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.Signal(ctx, cl.id, p.TargetID, p.Signal)

	case eventVoiceChatToggle:
		var p voiceTogglePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.SetVoiceActive(ctx, cl.id, p.IsActive)

	case eventScreenShareToggle:
		var p screenShareTogglePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.SetScreenSharing(ctx, cl.id, p.IsSharing)

	case eventCursorUpdate:
		var p cursorUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.UpdateCursor(ctx, cl.id, p.Cursor, p.Selection)

	case eventGameInvite:
		var p gameInvitePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.TargetUserID == "" {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.GameInvite(ctx, cl.id, p.TargetUserID, p.GameType)

	case eventGameInviteResponse:
		var p gameInviteResponsePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.dropMalformed(ctx, cl.id, env.Event, err)
			return
		}

		err = h.service.GameInviteResponse(ctx, cl.id, p.InviteID, p.Response)

	default:
		slog.DebugContext(ctx, "unknown event", "conn_id", cl.id, "event", env.Event)
		return
	}

	if err != nil {
		slog.ErrorContext(ctx, "error handling event", "conn_id", cl.id, "event", env.Event, "error", err)
	}
}

func (h *Handler) dropMalformed(ctx context.Context, connID, event string, err error) {
	slog.DebugContext(ctx, "dropping malformed payload", "conn_id", connID, "event", event, "error", err)
}
