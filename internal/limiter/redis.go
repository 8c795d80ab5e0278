package limiter

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vpetrukhin/authgate/internal/errs"
)

// Redis is a Redis-backed limiter with a fixed failure window and lockout.
// Counters are keyed by (username, ip hash) so a single address cannot lock
// a victim out from everywhere.
type Redis struct {
	rdb      goredis.UniversalClient
	prefix   string
	window   time.Duration
	maxFails int
	blockFor time.Duration
}

// NewRedis constructs a Redis-backed limiter.
func NewRedis(rdb goredis.UniversalClient, prefix string, window time.Duration, maxFails int, blockFor time.Duration) *Redis {
	if prefix == "" {
		prefix = "authgate"
	}
	return &Redis{rdb: rdb, prefix: prefix, window: window, maxFails: maxFails, blockFor: blockFor}
}

func (l *Redis) failKey(username string, ipHash []byte) string {
	return l.prefix + ":lim:fail:" + username + ":" + hex.EncodeToString(ipHash)
}

func (l *Redis) blockKey(username string, ipHash []byte) string {
	return l.prefix + ":lim:block:" + username + ":" + hex.EncodeToString(ipHash)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Redis) Allow(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	retryAfter, err := l.rdb.PTTL(ctx, l.blockKey(username, ipHash)).Result()
	if err != nil {
		return false, 0, storeErr(err)
	}
	if retryAfter > 0 {
		return false, retryAfter, nil
	}
	return true, 0, nil
}

// Success resets counters for (username, ip).
func (l *Redis) Success(ctx context.Context, username string, ipHash []byte) error {
	err := l.rdb.Del(ctx, l.failKey(username, ipHash), l.blockKey(username, ipHash)).Err()
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// Failure records a failed attempt; once maxFails is reached within the
// window a block is placed for blockFor.
func (l *Redis) Failure(ctx context.Context, username string, ipHash []byte) (bool, time.Duration, error) {
	key := l.failKey(username, ipHash)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, storeErr(err)
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, key, l.window).Err(); err != nil {
			return false, 0, storeErr(err)
		}
	}
	if int(count) < l.maxFails {
		return false, 0, nil
	}
	if err := l.rdb.Set(ctx, l.blockKey(username, ipHash), "1", l.blockFor).Err(); err != nil {
		return false, 0, storeErr(err)
	}
	return true, l.blockFor, nil
}
