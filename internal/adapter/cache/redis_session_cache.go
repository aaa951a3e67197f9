package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallbiznis/valora-offers/internal/domain"
	"github.com/smallbiznis/valora-offers/internal/identity"
)

const (
	principalKeyPrefix = "session:principal:"
	revokedKeyPrefix   = "session:revoked:"
)

// RedisSessionCache implements identity.SessionCache backed by Redis. The
// revocation keys are written by the identity provider on logout; this
// service only reads them.
type RedisSessionCache struct {
	client redis.UniversalClient
}

var _ identity.SessionCache = (*RedisSessionCache)(nil)

// NewRedisSessionCache constructs a Redis-backed session cache.
func NewRedisSessionCache(client redis.UniversalClient) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

// GetPrincipal loads a cached principal by token digest. A miss returns
// (nil, nil).
func (c *RedisSessionCache) GetPrincipal(ctx context.Context, digest string) (*domain.Principal, error) {
	bytes, err := c.client.Get(ctx, principalKeyPrefix+digest).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	var principal domain.Principal
	if err := json.Unmarshal(bytes, &principal); err != nil {
		return nil, fmt.Errorf("decode principal: %w", err)
	}
	return &principal, nil
}

// SetPrincipal caches a resolved principal with TTL.
func (c *RedisSessionCache) SetPrincipal(ctx context.Context, digest string, principal domain.Principal, ttl time.Duration) error {
	payload, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}
	if err := c.client.Set(ctx, principalKeyPrefix+digest, payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist principal: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session digest appears in the revocation set.
func (c *RedisSessionCache) IsRevoked(ctx context.Context, digest string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKeyPrefix+digest).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
