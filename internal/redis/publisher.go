package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher fans events out over Redis pub/sub to other processes.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishJSON encodes v and publishes it on channel. It returns the number of
// subscribers that received it.
func (p *Publisher) PublishJSON(ctx context.Context, channel string, v any) (int64, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", channel, err)
	}
	return p.client.Publish(ctx, channel, payload).Result()
}
