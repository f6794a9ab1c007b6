package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	basecache "github.com/riskibarqy/tonttery/internal/platform/cache"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

// Cache namespaces. Lottery lookups are keyed by lottery and requester because
// the joined flag depends on who asks.
const (
	clientKeyPrefix          = "client:"
	lotteryKeyPrefix         = "lottery:"
	clientLotteriesKeyPrefix = "clientLotteries:"
	lotteriesKeyPrefix       = "lotteries:"
	lotteryClientsKeyPrefix  = "lotteryClients:"
)

// CachedLotteryService is a read-through cache in front of LotteryAPI. Entries
// live until a mutator invalidates them; store expiry only bounds memory.
// Invalidation always runs after the wrapped mutator returned, so it follows
// the store commit.
//
// Membership mutators write the caller's fresh view back only when no other
// mutation of the same lottery started or finished while they ran.
type CachedLotteryService struct {
	next  LotteryAPI
	cache *basecache.Store

	mu          sync.Mutex
	generations map[string]*mutationGeneration
}

type mutationGeneration struct {
	seq      uint64
	inflight int
}

func NewCachedLotteryService(next LotteryAPI, cache *basecache.Store) *CachedLotteryService {
	return &CachedLotteryService{
		next:        next,
		cache:       cache,
		generations: make(map[string]*mutationGeneration),
	}
}

func lotteryKey(lotteryID, requesterID string) string {
	return lotteryKeyPrefix + lotteryID + ":" + requesterID
}

func (s *CachedLotteryService) Create(ctx context.Context, t lottery.Type, on time.Time) (LotteryResult, error) {
	result, err := s.next.Create(ctx, t, on)
	if err != nil {
		return LotteryResult{}, err
	}

	s.cache.DeletePrefix(ctx, lotteriesKeyPrefix)
	return result, nil
}

func (s *CachedLotteryService) Join(ctx context.Context, lotteryID, clientID string) (LotteryResult, error) {
	lotteryID = strings.TrimSpace(lotteryID)
	started := s.beginMutation(lotteryID)
	result, err := s.next.Join(ctx, lotteryID, clientID)
	s.afterMembershipChange(ctx, lotteryID, clientID, started, result, err)
	if err != nil {
		return LotteryResult{}, err
	}
	return result, nil
}

func (s *CachedLotteryService) Cancel(ctx context.Context, lotteryID, clientID string) (LotteryResult, error) {
	lotteryID = strings.TrimSpace(lotteryID)
	started := s.beginMutation(lotteryID)
	result, err := s.next.Cancel(ctx, lotteryID, clientID)
	s.afterMembershipChange(ctx, lotteryID, clientID, started, result, err)
	if err != nil {
		return LotteryResult{}, err
	}
	return result, nil
}

func (s *CachedLotteryService) Award(ctx context.Context, t lottery.Type, startDate time.Time) (LotteryResult, error) {
	result, err := s.next.Award(ctx, t, startDate)
	if err != nil {
		return LotteryResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.DeletePrefix(ctx, lotteryKey(result.ID, ""))
	s.cache.DeletePrefix(ctx, lotteriesKeyPrefix)
	s.cache.DeletePrefix(ctx, clientLotteriesKeyPrefix)
	s.cache.DeletePrefix(ctx, lotteryClientsKeyPrefix)

	// A membership write that committed before completion may still be on its
	// way to the cache; it must not publish its pre-completion view.
	if g, ok := s.generations[result.ID]; ok {
		g.seq++
		return result, nil
	}
	s.cache.Set(ctx, lotteryKey(result.ID, ""), result)
	return result, nil
}

// Overview is computed once a day and always reads the store.
func (s *CachedLotteryService) Overview(ctx context.Context, since time.Time) (Overview, error) {
	return s.next.Overview(ctx, since)
}

func (s *CachedLotteryService) GetClient(ctx context.Context, clientID string) (ClientResult, error) {
	v, err := s.cache.GetOrLoad(ctx, clientKeyPrefix+clientID, func(ctx context.Context) (any, error) {
		return s.next.GetClient(ctx, clientID)
	})
	if err != nil {
		return ClientResult{}, err
	}

	result, _ := v.(ClientResult)
	return result, nil
}

func (s *CachedLotteryService) GetLottery(ctx context.Context, lotteryID, requesterID string) (LotteryResult, error) {
	v, err := s.cache.GetOrLoad(ctx, lotteryKey(lotteryID, requesterID), func(ctx context.Context) (any, error) {
		return s.next.GetLottery(ctx, lotteryID, requesterID)
	})
	if err != nil {
		return LotteryResult{}, err
	}

	result, _ := v.(LotteryResult)
	return result, nil
}

func (s *CachedLotteryService) ListClientLotteries(ctx context.Context, clientID string, page pagination.Request) (pagination.Page[LotteryShort], error) {
	page = page.WithDefaults(lottery.DefaultClientListSort...)
	key := clientLotteriesKeyPrefix + clientID + ":" + page.Key()
	return cachedPage(ctx, s.cache, key, func(ctx context.Context) (pagination.Page[LotteryShort], error) {
		return s.next.ListClientLotteries(ctx, clientID, page)
	})
}

func (s *CachedLotteryService) ListLotteries(ctx context.Context, page pagination.Request) (pagination.Page[LotteryShort], error) {
	page = page.WithDefaults(lottery.DefaultListSort...)
	key := lotteriesKeyPrefix + page.Key()
	return cachedPage(ctx, s.cache, key, func(ctx context.Context) (pagination.Page[LotteryShort], error) {
		return s.next.ListLotteries(ctx, page)
	})
}

func (s *CachedLotteryService) ListLotteryMembers(ctx context.Context, lotteryID string, page pagination.Request) (pagination.Page[ClientShort], error) {
	page = page.WithDefaults(client.DefaultMemberSort...)
	key := lotteryClientsKeyPrefix + lotteryID + ":" + page.Key()
	return cachedPage(ctx, s.cache, key, func(ctx context.Context) (pagination.Page[ClientShort], error) {
		return s.next.ListLotteryMembers(ctx, lotteryID, page)
	})
}

func (s *CachedLotteryService) beginMutation(lotteryID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.generations[lotteryID]
	if !ok {
		g = &mutationGeneration{}
		s.generations[lotteryID] = g
	}
	g.seq++
	g.inflight++
	return g.seq
}

// afterMembershipChange ends the mutation begun at started. It drops every
// listing that may include the membership and every requester view of the
// lottery, then writes the caller's view back if it is still the newest.
func (s *CachedLotteryService) afterMembershipChange(ctx context.Context, lotteryID, clientID string, started uint64, result LotteryResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.generations[lotteryID]
	fresh := g.seq == started
	g.seq++
	g.inflight--
	if g.inflight == 0 {
		delete(s.generations, lotteryID)
	}

	s.cache.DeletePrefix(ctx, lotteryClientsKeyPrefix)
	s.cache.DeletePrefix(ctx, clientLotteriesKeyPrefix)
	s.cache.DeletePrefix(ctx, lotteryKey(lotteryID, ""))
	if fresh && err == nil {
		s.cache.Set(ctx, lotteryKey(lotteryID, clientID), result)
	}
}

func cachedPage[T any](
	ctx context.Context,
	cache *basecache.Store,
	key string,
	load func(context.Context) (pagination.Page[T], error),
) (pagination.Page[T], error) {
	v, err := cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return pagination.Page[T]{}, err
	}

	page, _ := v.(pagination.Page[T])
	return pagination.Clone(page), nil
}
