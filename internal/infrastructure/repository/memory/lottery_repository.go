package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

type LotteryRepository struct {
	mu    sync.RWMutex
	items map[string]lottery.Lottery
	now   func() time.Time
}

func NewLotteryRepository(lotteries []lottery.Lottery) *LotteryRepository {
	items := make(map[string]lottery.Lottery, len(lotteries))
	for _, l := range lotteries {
		items[l.ID] = l.Clone()
	}

	return &LotteryRepository{
		items: items,
		now:   time.Now,
	}
}

func (r *LotteryRepository) Create(_ context.Context, l lottery.Lottery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[l.ID]; exists {
		return fmt.Errorf("lottery %s already exists", l.ID)
	}
	if l.Status == lottery.StatusCreated {
		for _, existing := range r.items {
			if existing.Status == lottery.StatusCreated && existing.Type == l.Type && existing.StartDate.Equal(l.StartDate) {
				return fmt.Errorf("%s lottery for %s: %w", l.Type, l.StartDate.Format(lottery.DateLayout), lottery.ErrAlreadyScheduled)
			}
		}
	}

	r.items[l.ID] = l.Clone()
	return nil
}

func (r *LotteryRepository) GetByID(_ context.Context, lotteryID string) (lottery.Lottery, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[lotteryID]
	if !ok {
		return lottery.Lottery{}, false, nil
	}

	return l.Clone(), true, nil
}

func (r *LotteryRepository) GetByIDAndStatus(ctx context.Context, lotteryID string, status lottery.Status) (lottery.Lottery, bool, error) {
	l, ok, err := r.GetByID(ctx, lotteryID)
	if err != nil || !ok || l.Status != status {
		return lottery.Lottery{}, false, err
	}
	return l, true, nil
}

func (r *LotteryRepository) GetByTypeStatusStartDate(_ context.Context, t lottery.Type, status lottery.Status, startDate time.Time) (lottery.Lottery, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	startDate = lottery.Date(startDate)
	for _, l := range r.items {
		if l.Type == t && l.Status == status && l.StartDate.Equal(startDate) {
			return l.Clone(), true, nil
		}
	}

	return lottery.Lottery{}, false, nil
}

func (r *LotteryRepository) List(_ context.Context, page pagination.Request) (pagination.Page[lottery.Lottery], error) {
	r.mu.RLock()
	all := make([]lottery.Lottery, 0, len(r.items))
	for _, l := range r.items {
		all = append(all, l.Clone())
	}
	r.mu.RUnlock()

	return pageOf(all, page, compareLotteries), nil
}

func (r *LotteryRepository) ListByClient(_ context.Context, clientID string, page pagination.Request) (pagination.Page[lottery.Lottery], error) {
	r.mu.RLock()
	matched := make([]lottery.Lottery, 0)
	for _, l := range r.items {
		if l.HasParticipant(clientID) {
			matched = append(matched, l.Clone())
		}
	}
	r.mu.RUnlock()

	return pageOf(matched, page, compareLotteries), nil
}

func (r *LotteryRepository) ListStartingFrom(_ context.Context, since time.Time) ([]lottery.Lottery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	since = lottery.Date(since)
	out := make([]lottery.Lottery, 0)
	for _, l := range r.items {
		if !l.StartDate.Before(since) {
			out = append(out, l.Clone())
		}
	}
	slices.SortFunc(out, func(a, b lottery.Lottery) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out, nil
}

func (r *LotteryRepository) AddParticipant(_ context.Context, lotteryID, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotteryID]
	if !ok || l.Status != lottery.StatusCreated || l.HasParticipant(clientID) {
		return false, nil
	}

	l = l.Clone()
	l.Participants = append(l.Participants, clientID)
	l.UpdatedAt = r.now().UTC()
	r.items[lotteryID] = l
	return true, nil
}

func (r *LotteryRepository) RemoveParticipant(_ context.Context, lotteryID, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotteryID]
	if !ok || l.Status != lottery.StatusCreated {
		return false, nil
	}
	idx := slices.Index(l.Participants, clientID)
	if idx < 0 {
		return false, nil
	}

	l = l.Clone()
	l.Participants = slices.Delete(l.Participants, idx, idx+1)
	l.UpdatedAt = r.now().UTC()
	r.items[lotteryID] = l
	return true, nil
}

func (r *LotteryRepository) Complete(_ context.Context, lotteryID, winnerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotteryID]
	if !ok || l.Status != lottery.StatusCreated {
		return false, nil
	}
	if winnerID != "" && !l.HasParticipant(winnerID) {
		return false, nil
	}

	l = l.Clone()
	l.Status = lottery.StatusCompleted
	l.WinnerID = winnerID
	l.UpdatedAt = r.now().UTC()
	r.items[lotteryID] = l
	return true, nil
}

// Participants returns the member ids of a lottery.
func (r *LotteryRepository) Participants(lotteryID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.items[lotteryID].Participants...)
}

func compareLotteries(a, b lottery.Lottery, field string) int {
	switch field {
	case "type":
		return cmp.Compare(a.Type, b.Type)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.StartDate.Compare(b.StartDate)
	}
}

// pageOf sorts items by the requested orders and slices out one page.
func pageOf[T any](items []T, page pagination.Request, compare func(a, b T, field string) int) pagination.Page[T] {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, o := range page.Sort {
			c := compare(a, b, o.Field)
			if o.Direction == pagination.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(items)
	start := min(page.Offset(), total)
	end := total
	if page.Size > 0 {
		end = min(start+page.Size, total)
	}

	return pagination.NewPage(items[start:end], page, total)
}
