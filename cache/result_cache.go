package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/tennis-tournament/models"
)

const DefaultResultTTL = 10 * time.Minute

// ResultCache хранит списки результатов матчей по группам.
// Get returns (nil, false, nil) on a miss.
//
// Каждая группа имеет версию, которую Invalidate увеличивает. Читатель берёт
// Version до чтения из БД и передаёт её в Set; если за это время группу
// инвалидировали, Set ничего не пишет.
type ResultCache interface {
	Get(ctx context.Context, groupID int) ([]models.MatchResult, bool, error)
	Version(ctx context.Context, groupID int) (int64, error)
	Set(ctx context.Context, groupID int, version int64, results []models.MatchResult) error
	Invalidate(ctx context.Context, groupIDs ...int) error
}

type RedisResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisResultCache(rdb *redis.Client, ttl time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &RedisResultCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func groupKey(groupID int) string { return fmt.Sprintf("results:group:%d", groupID) }

func versionKey(groupID int) string { return fmt.Sprintf("results:group:%d:version", groupID) }

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, c stringGetter, groupID int) (int64, error) {
	v, err := c.Get(ctx, versionKey(groupID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version of group %d: %w", groupID, err)
	}
	return v, nil
}

func (c *RedisResultCache) Get(ctx context.Context, groupID int) ([]models.MatchResult, bool, error) {
	raw, err := c.rdb.Get(ctx, groupKey(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get group %d: %w", groupID, err)
	}
	var results []models.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("decode cached results for group %d: %w", groupID, err)
	}
	return results, true, nil
}

func (c *RedisResultCache) Version(ctx context.Context, groupID int) (int64, error) {
	return readVersion(ctx, c.rdb, groupID)
}

// Set stores results only if the group version still equals version.
func (c *RedisResultCache) Set(ctx context.Context, groupID int, version int64, results []models.MatchResult) error {
	if results == nil {
		results = []models.MatchResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results for group %d: %w", groupID, err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, groupKey(groupID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey(groupID))
	// версию поменяли между WATCH и EXEC: запись устарела
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

func (c *RedisResultCache) Invalidate(ctx context.Context, groupIDs ...int) error {
	if len(groupIDs) == 0 {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range groupIDs {
			pipe.Incr(ctx, versionKey(id))
			pipe.Del(ctx, groupKey(id))
		}
		return nil
	})
	return err
}
