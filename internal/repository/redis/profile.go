package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Piyushkr001/revix/internal/domain"
)

const profileKeyPrefix = "revix:profile:"

// ProfileCache implements repository.ProfileCache using Redis.
type ProfileCache struct {
	client *redis.Client
}

// NewProfileCache creates a new Redis-backed profile cache.
func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// Get returns the cached profile. ok is false on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*domain.Profile, bool, error) {
	data, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get profile: %w", err)
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, true, nil
}

// Set stores p for ttl.
func (c *ProfileCache) Set(ctx context.Context, p *domain.Profile, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := c.client.Set(ctx, profileKeyPrefix+p.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}
