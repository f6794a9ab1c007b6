package scheduler

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLocalLocker(t *testing.T) {
	t.Parallel()

	l := NewLocalLocker()
	release, ok, err := l.TryLock(context.Background(), "award", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := l.TryLock(context.Background(), "award", time.Minute); ok {
		t.Fatalf("second lock on the same key must fail")
	}
	if _, ok, _ := l.TryLock(context.Background(), "create", time.Minute); !ok {
		t.Fatalf("other keys must not be blocked")
	}

	release()
	release()
	if _, ok, _ := l.TryLock(context.Background(), "award", time.Minute); !ok {
		t.Fatalf("lock must be free after release")
	}
}

func TestRedisLocker(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	l, err := NewRedisLockerFromURL(redisURL)
	if err != nil {
		t.Fatalf("new redis locker: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	key := "test-" + time.Now().UTC().Format("150405.000000000")
	release, ok, err := l.TryLock(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	if _, ok, err := l.TryLock(ctx, key, time.Minute); err != nil || ok {
		t.Fatalf("second lock: ok=%v err=%v", ok, err)
	}
	release()
	release2, ok, err := l.TryLock(ctx, key, time.Minute)
	if err != nil || !ok {
		t.Fatalf("lock after release: ok=%v err=%v", ok, err)
	}
	release2()
}
