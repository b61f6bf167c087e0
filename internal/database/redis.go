package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stats cache reads sit on the request path and fall back to Postgres, so they
// give up quickly instead of holding the request.
const eventsOpTimeout = 500 * time.Millisecond

// RedisClients holds one client for the stats cache and event publishing and one
// for websocket subscriptions, which each pin a connection for their lifetime.
type RedisClients struct {
	Events     *redis.Client
	Subscriber *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	eventsOpt := eventsOptions(opt)
	events := redis.NewClient(eventsOpt)
	if err := events.Ping(ctx).Err(); err != nil {
		events.Close()
		return nil, fmt.Errorf("failed to ping Redis (events): %w", err)
	}

	subscriberOpt := *opt
	subscriber := redis.NewClient(&subscriberOpt)
	if err := subscriber.Ping(ctx).Err(); err != nil {
		events.Close()
		subscriber.Close()
		return nil, fmt.Errorf("failed to ping Redis (subscriber): %w", err)
	}

	return &RedisClients{Events: events, Subscriber: subscriber}, nil
}

func eventsOptions(base *redis.Options) *redis.Options {
	opt := *base
	if opt.ReadTimeout == 0 || opt.ReadTimeout > eventsOpTimeout {
		opt.ReadTimeout = eventsOpTimeout
	}
	if opt.WriteTimeout == 0 || opt.WriteTimeout > eventsOpTimeout {
		opt.WriteTimeout = eventsOpTimeout
	}
	return &opt
}

func (r *RedisClients) Close() {
	r.Events.Close()
	r.Subscriber.Close()
}
