// Package redis contains Redis implementations of the session store and
// denylist. Multi-key mutations run as Lua scripts so per-(user, device)
// transitions stay atomic with respect to concurrent rotation and sign-out.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vpetrukhin/authgate/internal/errs"
	"github.com/vpetrukhin/authgate/internal/model"
)

const recordVersion = "v1"

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// putScript creates the session key only when absent and tracks the device
// in the per-user index. The index expiry is bumped to the new session's
// TTL; sessions share one refresh lifetime, so the latest put always
// expires last.
var putScript = goredis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("SADD", KEYS[2], ARGV[3])
redis.call("PEXPIRE", KEYS[2], ARGV[2])
return 1
`)

// rotateScript compares the stored refresh token ID before replacing the
// record, making rotation one-shot under concurrency.
var rotateScript = goredis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
local jti = string.match(cur, "^v1|([^|]+)|")
if jti ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("SADD", KEYS[2], ARGV[4])
redis.call("PEXPIRE", KEYS[2], ARGV[3])
return 2
`)

var deleteScript = goredis.NewScript(`
redis.call("SREM", KEYS[2], ARGV[1])
return redis.call("DEL", KEYS[1])
`)

var deleteAllScript = goredis.NewScript(`
local devices = redis.call("SMEMBERS", KEYS[1])
local removed = 0
for i = 1, #devices do
  removed = removed + redis.call("DEL", ARGV[1] .. devices[i])
end
redis.call("DEL", KEYS[1])
return removed
`)

// countScript prunes index members whose session key has already expired,
// so lazily expired sessions never count against the limit.
var countScript = goredis.NewScript(`
local devices = redis.call("SMEMBERS", KEYS[1])
local live = 0
for i = 1, #devices do
  if redis.call("EXISTS", ARGV[1] .. devices[i]) == 1 then
    live = live + 1
  else
    redis.call("SREM", KEYS[1], devices[i])
  end
end
return live
`)

// SessionStore keeps active refresh sessions in Redis keyed by
// (user, device), with a per-user device index for count and purge.
type SessionStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewSessionStore constructs a session store with the given key prefix.
func NewSessionStore(rdb goredis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "authgate"
	}
	return &SessionStore{rdb: rdb, prefix: prefix}
}

func (s *SessionStore) sessKey(userID uuid.UUID, device string) string {
	return s.sessPrefix(userID) + device
}

func (s *SessionStore) sessPrefix(userID uuid.UUID) string {
	return s.prefix + ":sess:" + userID.String() + ":"
}

func (s *SessionStore) indexKey(userID uuid.UUID) string {
	return s.prefix + ":sessidx:" + userID.String()
}

func encodeRecord(rs model.RefreshSession) string {
	return fmt.Sprintf("%s|%s|%d|%d", recordVersion, rs.TokenID, rs.IssuedAt.Unix(), rs.ExpiresAt.Unix())
}

func decodeRecord(raw string) (*model.RefreshSession, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 4 || parts[0] != recordVersion || parts[1] == "" {
		return nil, fmt.Errorf("malformed session record")
	}
	iat, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, err
	}
	exp, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, err
	}
	return &model.RefreshSession{
		TokenID:   parts[1],
		IssuedAt:  time.Unix(iat, 0),
		ExpiresAt: time.Unix(exp, 0),
	}, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err)
}

// Put creates the session; errs.ErrDuplicateSession when one already exists.
func (s *SessionStore) Put(ctx context.Context, userID uuid.UUID, device string, rs model.RefreshSession) error {
	ttl := time.Until(rs.ExpiresAt).Milliseconds()
	if ttl <= 0 {
		return errs.ErrInvalidToken
	}
	created, err := putScript.Run(ctx, s.rdb,
		[]string{s.sessKey(userID, device), s.indexKey(userID)},
		encodeRecord(rs), ttl, device,
	).Int64()
	if err != nil {
		return storeErr(err)
	}
	if created == 0 {
		return errs.ErrDuplicateSession
	}
	return nil
}

// Get loads the session; errs.ErrSessionNotFound when absent.
func (s *SessionStore) Get(ctx context.Context, userID uuid.UUID, device string) (*model.RefreshSession, error) {
	raw, err := s.rdb.Get(ctx, s.sessKey(userID, device)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, errs.ErrSessionNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	rs, err := decodeRecord(raw)
	if err != nil {
		// Corrupt record: treat as absent; the client has to re-authenticate.
		return nil, errs.ErrSessionNotFound
	}
	return rs, nil
}

// Rotate atomically replaces the session iff the stored token ID matches.
func (s *SessionStore) Rotate(ctx context.Context, userID uuid.UUID, device, oldTokenID string, rs model.RefreshSession) error {
	ttl := time.Until(rs.ExpiresAt).Milliseconds()
	if ttl <= 0 {
		return errs.ErrInvalidToken
	}
	status, err := rotateScript.Run(ctx, s.rdb,
		[]string{s.sessKey(userID, device), s.indexKey(userID)},
		oldTokenID, encodeRecord(rs), ttl, device,
	).Int64()
	if err != nil {
		return storeErr(err)
	}
	switch status {
	case rotateStatusRotated:
		return nil
	case rotateStatusNotFound, rotateStatusMismatch:
		return errs.ErrSessionNotFound
	default:
		return storeErr(fmt.Errorf("unexpected rotate status %d", status))
	}
}

// Delete removes the session; deleting an absent key is a no-op.
func (s *SessionStore) Delete(ctx context.Context, userID uuid.UUID, device string) error {
	err := deleteScript.Run(ctx, s.rdb,
		[]string{s.sessKey(userID, device), s.indexKey(userID)},
		device,
	).Err()
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// DeleteAll purges every session of the user via the device index.
func (s *SessionStore) DeleteAll(ctx context.Context, userID uuid.UUID) (int, error) {
	removed, err := deleteAllScript.Run(ctx, s.rdb,
		[]string{s.indexKey(userID)},
		s.sessPrefix(userID),
	).Int64()
	if err != nil {
		return 0, storeErr(err)
	}
	return int(removed), nil
}

// Count returns the number of live sessions of the user.
func (s *SessionStore) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	live, err := countScript.Run(ctx, s.rdb,
		[]string{s.indexKey(userID)},
		s.sessPrefix(userID),
	).Int64()
	if err != nil {
		return 0, storeErr(err)
	}
	return int(live), nil
}
