package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// PoolCache caches category question pools.
type PoolCache interface {
	Get(ctx context.Context, category string) ([]Question, error)
	Set(ctx context.Context, category string, questions []Question) error
}

// Cache provides Redis-backed question pool caching to offload DB calls.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PoolCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(category string) string {
	return "qpool:" + category
}

func (c *Cache) Get(ctx context.Context, category string) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(category)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Cache) Set(ctx context.Context, category string, questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(category), data, c.ttl).Err()
}
