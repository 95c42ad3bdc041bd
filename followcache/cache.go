// Package followcache memoizes pairwise follow checks in Redis so repeated
// inference over overlapping retweeter sets does not spend API quota twice.
package followcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anatolykoptev/go-cascade/cascade"
)

// DefaultTTL bounds how long a cached relationship is trusted.
const DefaultTTL = 24 * time.Hour

// Cache is a cascade.FollowOracle that answers from Redis when it can and
// from the wrapped oracle otherwise. Wrap the rate-limited oracle, not the
// other way round, so hits skip the wait.
type Cache struct {
	rdb    redis.Cmdable
	oracle cascade.FollowOracle
	ttl    time.Duration
	prefix string
}

var _ cascade.FollowOracle = (*Cache)(nil)

// New returns a Cache in front of oracle. ttl <= 0 means DefaultTTL.
func New(rdb redis.Cmdable, oracle cascade.FollowOracle, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, oracle: oracle, ttl: ttl, prefix: "follows"}
}

// Follows implements cascade.FollowOracle. Redis failures degrade to a
// direct oracle call and are only logged.
func (c *Cache) Follows(ctx context.Context, a, b int64) (aFollowsB, bFollowsA bool, err error) {
	key, swapped := c.key(a, b)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if fwd, back, ok := decode(val); ok {
			if swapped {
				return back, fwd, nil
			}
			return fwd, back, nil
		}
		slog.Warn("followcache: malformed entry", slog.String("key", key), slog.String("value", val))
	case !errors.Is(err, redis.Nil):
		slog.Warn("followcache: get failed", slog.String("key", key), slog.Any("error", err))
	}

	aFollowsB, bFollowsA, err = c.oracle.Follows(ctx, a, b)
	if err != nil {
		return false, false, err
	}

	fwd, back := aFollowsB, bFollowsA
	if swapped {
		fwd, back = back, fwd
	}
	if err := c.rdb.Set(ctx, key, encode(fwd, back), c.ttl).Err(); err != nil {
		slog.Warn("followcache: set failed", slog.String("key", key), slog.Any("error", err))
	}
	return aFollowsB, bFollowsA, nil
}

// key orders the pair so (a, b) and (b, a) share one entry. swapped reports
// whether a is the larger ID.
func (c *Cache) key(a, b int64) (key string, swapped bool) {
	if a > b {
		a, b = b, a
		swapped = true
	}
	return fmt.Sprintf("%s:%d:%d", c.prefix, a, b), swapped
}

// encode packs both directions, lower ID first, as two '0'/'1' characters.
func encode(lowFollowsHigh, highFollowsLow bool) string {
	return string([]byte{bit(lowFollowsHigh), bit(highFollowsLow)})
}

func bit(v bool) byte {
	if v {
		return '1'
	}
	return '0'
}

func decode(v string) (lowFollowsHigh, highFollowsLow, ok bool) {
	if len(v) != 2 {
		return false, false, false
	}
	for i := range 2 {
		if v[i] != '0' && v[i] != '1' {
			return false, false, false
		}
	}
	return v[0] == '1', v[1] == '1', true
}
