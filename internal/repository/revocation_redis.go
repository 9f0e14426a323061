package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationStore keeps revoked token digests in Redis. Each key expires at the
// token's natural expiry, so Redis performs the pruning.
type RedisRevocationStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRevocationStore wraps client. Keys are prefix + hex(sha256(token)).
func NewRedisRevocationStore(client *redis.Client, prefix string, now func() time.Time) *RedisRevocationStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &RedisRevocationStore{client: client, prefix: prefix, now: now}
}

func (s *RedisRevocationStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Revoke stores the token until naturalExpiry.
func (s *RedisRevocationStore) Revoke(ctx context.Context, token string, naturalExpiry time.Time) error {
	ttl := naturalExpiry.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether an unexpired entry exists for token.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis revocation check: %w", err)
	}
	return n > 0, nil
}
