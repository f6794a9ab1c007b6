package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Options bounds memory only. A zero horizon disables that kind of expiry.
type Options struct {
	ExpireAfterWrite  time.Duration
	ExpireAfterAccess time.Duration
}

type entry struct {
	value      any
	writtenAt  time.Time
	accessedAt time.Time
}

// Store is an in-process key/value cache with prefix invalidation.
//
// Every write or invalidation bumps a generation counter. A loader that started
// before an invalidation never publishes its result, so a reader that arrives after
// a mutator finished cannot be handed a value computed from pre-mutation state.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	opts       Options
	generation atomic.Uint64
	flight     singleflight.Group
	now        func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.ExpireAfterWrite < 0 {
		opts.ExpireAfterWrite = 0
	}
	if opts.ExpireAfterAccess < 0 {
		opts.ExpireAfterAccess = 0
	}
	return &Store{
		entries: make(map[string]entry),
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.expired(e, now) {
		delete(s.entries, key)
		return nil, false
	}
	if s.opts.ExpireAfterAccess > 0 {
		e.accessedAt = now
		s.entries[key] = e
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	now := s.now()
	s.mu.Lock()
	s.generation.Add(1)
	s.entries[key] = entry{value: value, writtenAt: now, accessedAt: now}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.generation.Add(1)
	delete(s.entries, key)
	s.mu.Unlock()
}

// DeletePrefix drops a whole namespace, e.g. "lotteryClients:".
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	s.generation.Add(1)
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the cached value for key or runs loader once per key and
// generation. Loader errors are never cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	gen := s.generation.Load()
	flightKey := key + "#" + strconv.FormatUint(gen, 10)
	value, err, _ := s.flight.Do(flightKey, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.setIfGeneration(key, loaded, gen)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) setIfGeneration(key string, value any, gen uint64) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		return
	}
	s.entries[key] = entry{value: value, writtenAt: now, accessedAt: now}
}

func (s *Store) expired(e entry, now time.Time) bool {
	if s.opts.ExpireAfterWrite > 0 && !e.writtenAt.Add(s.opts.ExpireAfterWrite).After(now) {
		return true
	}
	if s.opts.ExpireAfterAccess > 0 && !e.accessedAt.Add(s.opts.ExpireAfterAccess).After(now) {
		return true
	}
	return false
}
