package broadcaster

import (
	"context"
	"fmt"

	"github.com/arthurdotwork/signaling/internal/domain"
)

// Local is the single-node broadcaster: events are handed straight to the
// in-process dispatcher without touching a bus.
type Local struct {
	dispatcher *domain.Dispatcher
}

func NewLocal(dispatcher *domain.Dispatcher) *Local {
	return &Local{dispatcher: dispatcher}
}

func (b *Local) Broadcast(ctx context.Context, ev domain.Event) error {
	if _, err := b.dispatcher.Dispatch(ctx, ev); err != nil {
		return fmt.Errorf("dispatcher.Dispatch: %w", err)
	}

	return nil
}
