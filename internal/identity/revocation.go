package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "identity:revoked:"

// RedisRevocationList keeps revoked token ids in Redis, expiring each entry
// together with the token it shadows.
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList wraps an existing Redis client.
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// The token is already past expiry; keep the tombstone briefly so
		// concurrent verifications still observe the revocation.
		ttl = time.Minute
	}
	return l.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
