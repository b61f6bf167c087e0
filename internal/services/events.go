package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vocab-backend/internal/models"
)

// RedisNotifier publishes progress events on the per-user channel consumed by the
// websocket hub and keeps a short-lived cache of collection stats.
type RedisNotifier struct {
	client   *redis.Client
	statsTTL time.Duration
}

func NewRedisNotifier(client *redis.Client, statsTTL time.Duration) *RedisNotifier {
	return &RedisNotifier{client: client, statsTTL: statsTTL}
}

func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID)
}

func statsKey(collectionID uuid.UUID, gen int64) string {
	return fmt.Sprintf("stats:collection:%s:%d", collectionID, gen)
}

func statsGenKey(collectionID uuid.UUID) string {
	return fmt.Sprintf("stats:collection:%s:gen", collectionID)
}

func (n *RedisNotifier) PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("events: failed to encode %s message: %v", msg.Type, err)
		return
	}
	if err := n.client.Publish(ctx, UserChannel(userID), string(data)).Err(); err != nil {
		log.Printf("events: failed to publish %s for user %s: %v", msg.Type, userID, err)
	}
}

// StatsGeneration reports the collection's current cache generation. A missing
// counter is generation 0. ok is false when caching is off or redis is unreachable.
func (n *RedisNotifier) StatsGeneration(ctx context.Context, collectionID uuid.UUID) (int64, bool) {
	if n.statsTTL <= 0 {
		return 0, false
	}
	gen, err := n.client.Get(ctx, statsGenKey(collectionID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		log.Printf("events: stats generation read failed for %s: %v", collectionID, err)
		return 0, false
	}
	return gen, true
}

func (n *RedisNotifier) CachedCollectionStats(ctx context.Context, collectionID uuid.UUID, gen int64) (*models.CollectionStats, bool) {
	if n.statsTTL <= 0 {
		return nil, false
	}
	raw, err := n.client.Get(ctx, statsKey(collectionID, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("events: stats cache read failed for %s: %v", collectionID, err)
		}
		return nil, false
	}

	var stats models.CollectionStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (n *RedisNotifier) CacheCollectionStats(ctx context.Context, collectionID uuid.UUID, gen int64, stats *models.CollectionStats) {
	if n.statsTTL <= 0 {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := n.client.Set(ctx, statsKey(collectionID, gen), data, n.statsTTL).Err(); err != nil {
		log.Printf("events: stats cache write failed for %s: %v", collectionID, err)
	}
}

// InvalidateCollectionStats bumps the generation. Entries under older
// generations are left to expire.
func (n *RedisNotifier) InvalidateCollectionStats(ctx context.Context, collectionID uuid.UUID) {
	if err := n.client.Incr(ctx, statsGenKey(collectionID)).Err(); err != nil {
		log.Printf("events: stats cache invalidation failed for %s: %v", collectionID, err)
	}
}
