package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/arthurdotwork/signaling/internal/domain"
	"github.com/arthurdotwork/signaling/internal/infrastructure/redis"
)

type LocalDispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) (domain.DeliveryOutcome, error)
}

// Subscriber drains the shared bus and replays each event into the local
// dispatcher, which delivers to whichever of its connections are concerned.
type Subscriber struct {
	redisClient *redis.Client
	dispatcher  LocalDispatcher
}

func NewSubscriber(redisClient *redis.Client, dispatcher LocalDispatcher) *Subscriber {
	return &Subscriber{
		redisClient: redisClient,
		dispatcher:  dispatcher,
	}
}

func (s *Subscriber) Subscribe(ctx context.Context, channel string) error {
	subscriber := s.redisClient.Subscribe(ctx, channel)

	if err := subscriber(func(msg redis.Message) error {
		var ev domain.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			return fmt.Errorf("json.Unmarshal: %w", err)
		}

		if _, err := s.dispatcher.Dispatch(ctx, ev); err != nil {
			return fmt.Errorf("dispatcher.Dispatch: %w", err)
		}

		return nil
	}); err != nil {
		slog.ErrorContext(ctx, "error subscribing to redis", "error", err)
		return fmt.Errorf("subscriber: %w", err)
	}

	return nil
}
