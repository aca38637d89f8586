// Package repository stores revoked session identifiers in Redis.
package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	apperrors "github.com/allisson/sentinel/internal/errors"
)

const revokedKeyPrefix = "sentinel:revoked:"

// RedisSessionRepository keeps revoked session IDs until the token they belong to expires.
type RedisSessionRepository struct {
	client redis.UniversalClient
}

// NewRedisSessionRepository creates a repository backed by client.
func NewRedisSessionRepository(client redis.UniversalClient) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func revokedKey(sessionID string) string {
	return revokedKeyPrefix + sessionID
}

// Revoke marks sessionID as revoked for ttl. A non-positive ttl is a no-op since the
// token has already expired.
func (r *RedisSessionRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(sessionID), 1, ttl).Err(); err != nil {
		return apperrors.Join(authDomain.ErrSessionStore, apperrors.Wrap(err, "failed to store revoked session"))
	}
	return nil
}

// IsRevoked reports whether sessionID was revoked.
func (r *RedisSessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, apperrors.Join(authDomain.ErrSessionStore, apperrors.Wrap(err, "failed to read revoked session"))
	}
	return n > 0, nil
}
