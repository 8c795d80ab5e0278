package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Denylist keeps revoked access-token IDs with TTL equal to the token's
// remaining lifetime. Entries expire on their own; absence is the open state.
type Denylist struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewDenylist constructs a denylist with the given key prefix.
func NewDenylist(rdb goredis.UniversalClient, prefix string) *Denylist {
	if prefix == "" {
		prefix = "authgate"
	}
	return &Denylist{rdb: rdb, prefix: prefix}
}

func (d *Denylist) key(tokenID string) string {
	return d.prefix + ":revoked:" + tokenID
}

// Put marks the token ID revoked for ttl. Idempotent; a repeated put only
// refreshes the entry. TTL is floored at one second so a token revoked at
// the edge of its lifetime still hits the denylist.
func (d *Denylist) Put(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := d.rdb.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

// Contains reports whether the token ID is currently revoked.
func (d *Denylist) Contains(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, storeErr(err)
	}
	return n > 0, nil
}
