package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/arthurdotwork/signaling/internal/domain"
)

// Client dials the signaling server, joins a room and prints every event it
// receives. Handy for watching presence traffic without a browser.
func Client(ctx context.Context, _ *cobra.Command) error {
	endpoint := env("SIGNALING_URL", "ws://localhost:3001/ws")

	roomPrompt := promptui.Prompt{Label: "Room"}
	roomID, err := roomPrompt.Run()
	if err != nil {
		return fmt.Errorf("prompt.Run: %w", err)
	}

	namePrompt := promptui.Prompt{Label: "Name"}
	name, err := namePrompt.Run()
	if err != nil {
		return fmt.Errorf("prompt.Run: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket.DialContext: %w", err)
	}
	defer conn.Close()

	join := map[string]any{
		"event": "join-room",
		"data": map[string]any{
			"roomId": roomID,
			"user": domain.Profile{
				ID:    uuid.NewString(),
				Name:  name,
				Color: "#7c3aed",
			},
		},
	}

	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("conn.WriteJSON: %w", err)
	}

	sink := make(chan error, 1)

	go receiveEvents(conn, sink)

	select {
	case <-ctx.Done():
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		return nil
	case err := <-sink:
		if err != nil {
			return fmt.Errorf("receiveEvents: %w", err)
		}

		return nil
	}
}

func receiveEvents(conn *websocket.Conn, sink chan error) {
	for {
		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}

		if err := conn.ReadJSON(&env); err != nil {
			sink <- nil
			return
		}

		switch env.Event {
		case domain.EventServerClosing:
			fmt.Println("Server is closing")
			sink <- nil
			return
		case domain.EventRoomUsers:
			fmt.Printf("Room members: %s\n", env.Data)
		case domain.EventUserJoined:
			fmt.Printf("Joined: %s\n", env.Data)
		case domain.EventUserLeft:
			fmt.Printf("Left: %s\n", env.Data)
		default:
			fmt.Printf("%s: %s\n", env.Event, env.Data)
		}
	}
}
