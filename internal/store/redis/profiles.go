package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gosuda/slackdone/internal/board"
)

// ProfileCache keeps resolved Slack profiles in Redis and only asks the
// wrapped resolver for ids it has not seen within the TTL. Cache errors are
// logged and fall through to the resolver.
type ProfileCache struct {
	client *redis.Client
	next   board.UserResolver
	ttl    time.Duration
	logger zerolog.Logger
}

var _ board.UserResolver = (*ProfileCache)(nil) //nolint:gochecknoglobals // compile-time check

func NewProfileCache(client *redis.Client, next board.UserResolver, ttl time.Duration, logger zerolog.Logger) *ProfileCache {
	return &ProfileCache{client: client, next: next, ttl: ttl, logger: logger}
}

// ProfileKey returns the cache key of one Slack user as seen through token.
// Keys are scoped by a fingerprint of the token so that workspaces never
// share cached profiles.
func ProfileKey(token, userID string) string {
	sum := sha256.Sum256([]byte(token))
	return "profile:" + hex.EncodeToString(sum[:8]) + ":" + userID
}

func (c *ProfileCache) ResolveUsers(ctx context.Context, token string, ids []string) (map[string]board.UserProfile, error) {
	out := make(map[string]board.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := c.lookup(ctx, token, ids, out)
	if len(missing) == 0 {
		return out, nil
	}

	fresh, err := c.next.ResolveUsers(ctx, token, missing)
	for id, p := range fresh {
		out[id] = p
	}
	c.store(ctx, token, fresh)

	if err != nil {
		return out, fmt.Errorf("redis.ProfileCache.ResolveUsers: %w", err)
	}
	return out, nil
}

// lookup fills out from the cache and returns the ids that were not found.
func (c *ProfileCache) lookup(ctx context.Context, token string, ids []string, out map[string]board.UserProfile) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProfileKey(token, id)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis: profile cache read failed")
		return ids
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p board.UserProfile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = p
	}
	return missing
}

func (c *ProfileCache) store(ctx context.Context, token string, profiles map[string]board.UserProfile) {
	if len(profiles) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for id, p := range profiles {
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, ProfileKey(token, id), raw, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("redis: profile cache write failed")
	}
}
