package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"wildberries/catalog/internal/domain"
)

const keyPrefix = "catalog:subjects:"

type SubjectCache interface {
	Get(ctx context.Context, leafID int64) ([]domain.Subject, bool, error)
	Set(ctx context.Context, leafID int64, subjects []domain.Subject) error
}

type redisSubjectCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewRedisSubjectCache stores subjects per leaf; ttl <= 0 keeps entries forever
func NewRedisSubjectCache(redisClient *redis.Client, ttl time.Duration) SubjectCache {
	if ttl < 0 {
		ttl = 0
	}
	return &redisSubjectCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// Key is the redis key holding the subjects of a leaf
func Key(leafID int64) string {
	return keyPrefix + strconv.FormatInt(leafID, 10)
}

func (c *redisSubjectCache) Get(ctx context.Context, leafID int64) ([]domain.Subject, bool, error) {
	key := Key(leafID)
	val, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Not cached yet
		}
		return nil, false, fmt.Errorf("failed to get subjects for leaf %d: %w", leafID, err)
	}

	subjects := []domain.Subject{}
	if err := json.Unmarshal(val, &subjects); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached subjects for leaf %d: %w", leafID, err)
	}

	return subjects, true, nil
}

func (c *redisSubjectCache) Set(ctx context.Context, leafID int64, subjects []domain.Subject) error {
	if subjects == nil {
		subjects = []domain.Subject{}
	}

	data, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("failed to encode subjects for leaf %d: %w", leafID, err)
	}

	key := Key(leafID)
	if err := c.redisClient.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache subjects for leaf %d: %w", leafID, err)
	}
	return nil
}
