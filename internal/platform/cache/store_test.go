package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(Options{ExpireAfterWrite: time.Hour})
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(Options{})
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errUnexpectedValue
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, errUnexpectedValue) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if v != "ok" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestStore_DeletePrefix_DropsNamespaceOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(Options{})
	store.Set(ctx, "lotteryClients:a:0", 1)
	store.Set(ctx, "lotteryClients:b:0", 2)
	store.Set(ctx, "client:a", 3)

	store.DeletePrefix(ctx, "lotteryClients:")

	if _, ok := store.Get(ctx, "lotteryClients:a:0"); ok {
		t.Fatalf("expected namespace entry to be removed")
	}
	if _, ok := store.Get(ctx, "client:a"); !ok {
		t.Fatalf("expected unrelated entry to survive")
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("unexpected size: got=%d want=1", got)
	}
}

func TestStore_GetOrLoad_DiscardsLoadRacingInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(Options{})
	loading := make(chan struct{})
	release := make(chan struct{})

	done := make(chan any, 1)
	go func() {
		v, _ := store.GetOrLoad(ctx, "lottery:1:", func(context.Context) (any, error) {
			close(loading)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-loading
	store.DeletePrefix(ctx, "lottery:1:")
	close(release)
	<-done

	if _, ok := store.Get(ctx, "lottery:1:"); ok {
		t.Fatalf("value loaded before invalidation must not be cached")
	}

	v, err := store.GetOrLoad(ctx, "lottery:1:", func(context.Context) (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("GetOrLoad error: %v", err)
	}
	if v != "fresh" {
		t.Fatalf("unexpected value after invalidation: %v", v)
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("after write", func(t *testing.T) {
		store := NewStore(Options{ExpireAfterWrite: time.Hour})
		store.now = func() time.Time { return now }
		store.Set(ctx, "k", "v")

		store.now = func() time.Time { return now.Add(59 * time.Minute) }
		if _, ok := store.Get(ctx, "k"); !ok {
			t.Fatalf("expected entry before write horizon")
		}
		store.now = func() time.Time { return now.Add(time.Hour) }
		if _, ok := store.Get(ctx, "k"); ok {
			t.Fatalf("expected entry to expire after write horizon")
		}
	})

	t.Run("after access", func(t *testing.T) {
		store := NewStore(Options{ExpireAfterAccess: time.Hour})
		store.now = func() time.Time { return now }
		store.Set(ctx, "k", "v")

		store.now = func() time.Time { return now.Add(50 * time.Minute) }
		if _, ok := store.Get(ctx, "k"); !ok {
			t.Fatalf("expected entry before access horizon")
		}
		store.now = func() time.Time { return now.Add(100 * time.Minute) }
		if _, ok := store.Get(ctx, "k"); !ok {
			t.Fatalf("access should have extended the horizon")
		}
		store.now = func() time.Time { return now.Add(161 * time.Minute) }
		if _, ok := store.Get(ctx, "k"); ok {
			t.Fatalf("expected entry to expire after idle horizon")
		}
	})

	t.Run("zero horizons never expire", func(t *testing.T) {
		store := NewStore(Options{})
		store.now = func() time.Time { return now }
		store.Set(ctx, "k", "v")
		store.now = func() time.Time { return now.Add(24 * 365 * time.Hour) }
		if _, ok := store.Get(ctx, "k"); !ok {
			t.Fatalf("expected entry to stay without horizons")
		}
	})
}

var errUnexpectedValue = errors.New("unexpected loaded value")
