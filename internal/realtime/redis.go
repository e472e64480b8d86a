package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func userChannel(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

// RedisPusher fans events out over Redis pub/sub so any API instance
// holding the user's stream can deliver them.
type RedisPusher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisPusher(client *redis.Client, log *zap.Logger) *RedisPusher {
	return &RedisPusher{client: client, log: log.With(zap.String("pusher", "redis"))}
}

func (p *RedisPusher) Push(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, userChannel(ev.UserID), body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Name, err)
	}
	return nil
}

func (p *RedisPusher) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, func(), error) {
	sub := p.client.Subscribe(ctx, userChannel(userID))
	// Wait for the subscription confirmation so errors surface here
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", userID, err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.log.Warn("Dropping malformed event", zap.Error(err), zap.String("channel", msg.Channel))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop, nil
}
