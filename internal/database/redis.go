package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients separates blocking queue traffic and long-lived pub/sub
// subscriptions from the keyspace used for OTPs and tokens.
type RedisClients struct {
	KV     *redis.Client
	Queue  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clients := &RedisClients{}
	for _, target := range []struct {
		name string
		dst  **redis.Client
	}{
		{"kv", &clients.KV},
		{"queue", &clients.Queue},
		{"pubsub", &clients.PubSub},
	} {
		o := *opt
		c := redis.NewClient(&o)
		if err := c.Ping(ctx).Err(); err != nil {
			c.Close()
			clients.Close()
			return nil, fmt.Errorf("failed to ping Redis (%s): %w", target.name, err)
		}
		*target.dst = c
	}

	return clients, nil
}

func (r *RedisClients) Close() {
	for _, c := range []*redis.Client{r.KV, r.Queue, r.PubSub} {
		if c != nil {
			c.Close()
		}
	}
}
