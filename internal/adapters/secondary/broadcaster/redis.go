package broadcaster

import (
	"context"

	"github.com/arthurdotwork/signaling/internal/domain"
	"github.com/arthurdotwork/signaling/internal/infrastructure/redis"
)

// Redis publishes events to the shared bus. Every node, this one included,
// picks them up through its subscriber and fans out to its own connections.
type Redis struct {
	redisClient *redis.Client
	channel     string
}

func NewRedis(redisClient *redis.Client, channel string) *Redis {
	return &Redis{redisClient: redisClient, channel: channel}
}

func (b *Redis) Broadcast(ctx context.Context, ev domain.Event) error {
	return b.redisClient.Publish(ctx, b.channel, ev)
}
