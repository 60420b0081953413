package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobposts-engine/internal/domain"
)

// GeoCache keeps normalized geocoding results in Redis so repeated
// replications of the same city skip the provider.
type GeoCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at the given URL.
// URL format: redis://localhost:6379/0
func New(redisURL string, ttl time.Duration) (*GeoCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &GeoCache{client: client, ttl: ttl}, nil
}

func (c *GeoCache) Get(ctx context.Context, query string) (domain.LocationInfo, bool) {
	data, err := c.client.Get(ctx, buildKey(query)).Bytes()
	if err != nil {
		return domain.LocationInfo{}, false
	}

	var info domain.LocationInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return domain.LocationInfo{}, false
	}
	return info, true
}

func (c *GeoCache) Set(ctx context.Context, query string, info domain.LocationInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("cache: marshal error: %w", err)
	}
	return c.client.Set(ctx, buildKey(query), data, c.ttl).Err()
}

func (c *GeoCache) Close() error {
	return c.client.Close()
}

func buildKey(query string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("jobposts:geo:%x", hash[:8])
}
