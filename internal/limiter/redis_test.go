package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, maxFails int) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedis(rdb, "t", time.Minute, maxFails, time.Minute), mr
}

func TestLimiter_BlocksAfterMaxFails(t *testing.T) {
	t.Parallel()
	lim, _ := newTestLimiter(t, 3)
	ctx := context.Background()
	ip := HashIP("10.0.0.1")

	ok, _, err := lim.Allow(ctx, "alice", ip)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Fatalf("fresh key is blocked")
	}

	for i := 0; i < 2; i++ {
		blocked, _, err := lim.Failure(ctx, "alice", ip)
		if err != nil {
			t.Fatalf("Failure(%d): %v", i, err)
		}
		if blocked {
			t.Fatalf("blocked before reaching the threshold")
		}
	}
	blocked, retryAfter, err := lim.Failure(ctx, "alice", ip)
	if err != nil {
		t.Fatalf("Failure(final): %v", err)
	}
	if !blocked || retryAfter != time.Minute {
		t.Fatalf("blocked=%v retryAfter=%v", blocked, retryAfter)
	}

	ok, retryAfter, err = lim.Allow(ctx, "alice", ip)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok || retryAfter <= 0 {
		t.Fatalf("block not enforced: ok=%v retryAfter=%v", ok, retryAfter)
	}
}

func TestLimiter_SuccessResets(t *testing.T) {
	t.Parallel()
	lim, _ := newTestLimiter(t, 2)
	ctx := context.Background()
	ip := HashIP("10.0.0.2")

	if _, _, err := lim.Failure(ctx, "bob", ip); err != nil {
		t.Fatalf("Failure: %v", err)
	}
	if err := lim.Success(ctx, "bob", ip); err != nil {
		t.Fatalf("Success: %v", err)
	}
	// Counter starts over; a single failure no longer blocks.
	blocked, _, err := lim.Failure(ctx, "bob", ip)
	if err != nil {
		t.Fatalf("Failure after reset: %v", err)
	}
	if blocked {
		t.Fatalf("reset did not clear the counter")
	}
}

func TestLimiter_BlockAndWindowExpire(t *testing.T) {
	t.Parallel()
	lim, mr := newTestLimiter(t, 1)
	ctx := context.Background()
	ip := HashIP("10.0.0.3")

	blocked, _, err := lim.Failure(ctx, "carol", ip)
	if err != nil {
		t.Fatalf("Failure: %v", err)
	}
	if !blocked {
		t.Fatalf("single-failure threshold did not block")
	}

	mr.FastForward(2 * time.Minute)

	ok, _, err := lim.Allow(ctx, "carol", ip)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Fatalf("block outlived its TTL")
	}
}

func TestLimiter_KeysAreScopedByUserAndIP(t *testing.T) {
	t.Parallel()
	lim, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	if _, _, err := lim.Failure(ctx, "dave", HashIP("10.0.0.4")); err != nil {
		t.Fatalf("Failure: %v", err)
	}

	// Same user from another address, and another user from the same
	// address, both stay unaffected.
	if ok, _, _ := lim.Allow(ctx, "dave", HashIP("10.0.0.5")); !ok {
		t.Fatalf("block leaked across addresses")
	}
	if ok, _, _ := lim.Allow(ctx, "erin", HashIP("10.0.0.4")); !ok {
		t.Fatalf("block leaked across users")
	}
}
