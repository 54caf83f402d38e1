package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func blacklistKey(jti string) string { return "token:blacklist:" + jti }

// RedisBlacklist is the shared revocation list for refresh tokens.
// Entries expire together with the token they revoke, so the set stays
// bounded without a sweeper. Backed by redis, revocations are visible to
// every process immediately.
type RedisBlacklist struct {
	rdb *redis.Client
}

func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb}
}

// Revoke marks the token id revoked for the remainder of its lifetime.
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing to record.
		return nil
	}
	return b.rdb.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.rdb.Get(ctx, blacklistKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
