package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gachenge/school-portal/internal/apperr"
)

// TokenRegistry is the refresh-token store.  Each live token is one Redis
// key: key = opaque token string, value = owning user id, TTL = the
// refresh-token lifetime.  Presence in the registry is the sole validity
// criterion; expiry is handled natively by Redis so there is nothing to
// sweep.  One user may hold several live tokens at once.
type TokenRegistry struct {
	rdb    *redis.Client
	prefix string
}

// NewTokenRegistry returns a registry backed by the given client.  Keys are
// namespaced under "refresh:" so the registry can share a database with the
// rate limiter.
func NewTokenRegistry(rdb *redis.Client) *TokenRegistry {
	return &TokenRegistry{rdb: rdb, prefix: "refresh:"}
}

// Issue stores token -> userID with the given TTL.
func (t *TokenRegistry) Issue(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := t.rdb.Set(ctx, t.prefix+token, userID, ttl).Err(); err != nil {
		return apperr.Unexpected(err.Error())
	}
	return nil
}

// Lookup resolves a token to its owning user id.  An absent or expired
// token yields InvalidToken; an unreachable registry does too, because a
// token that cannot be checked must not be trusted.
func (t *TokenRegistry) Lookup(ctx context.Context, token string) (string, error) {
	userID, err := t.rdb.Get(ctx, t.prefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperr.InvalidToken()
	}
	if err != nil {
		return "", apperr.InvalidToken()
	}
	return userID, nil
}

// Revoke deletes the token entry.  Revoking an absent token fails with
// InvalidToken so logout with a stale token is reported to the caller.
func (t *TokenRegistry) Revoke(ctx context.Context, token string) error {
	n, err := t.rdb.Del(ctx, t.prefix+token).Result()
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	if n == 0 {
		return apperr.InvalidToken()
	}
	return nil
}
