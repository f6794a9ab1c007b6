package memory

import (
	"cmp"
	"context"
	"sync"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

type membershipSource interface {
	Participants(lotteryID string) []string
}

type ClientRepository struct {
	mu      sync.RWMutex
	items   map[string]client.Client
	members membershipSource
}

func NewClientRepository(clients []client.Client, members membershipSource) *ClientRepository {
	items := make(map[string]client.Client, len(clients))
	for _, c := range clients {
		items[c.ID] = c
	}

	return &ClientRepository{
		items:   items,
		members: members,
	}
}

func (r *ClientRepository) GetByID(_ context.Context, clientID string) (client.Client, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[clientID]
	if !ok {
		return client.Client{}, false, nil
	}

	return c, true, nil
}

func (r *ClientRepository) ListByLottery(_ context.Context, lotteryID string, page pagination.Request) (pagination.Page[client.Client], error) {
	var ids []string
	if r.members != nil {
		ids = r.members.Participants(lotteryID)
	}

	r.mu.RLock()
	out := make([]client.Client, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.items[id]; ok {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	return pageOf(out, page, compareClients), nil
}

func (r *ClientRepository) Upsert(_ context.Context, c client.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[c.ID] = c
	return nil
}

func compareClients(a, b client.Client, field string) int {
	switch field {
	case "isPremium":
		return cmp.Compare(boolRank(a.IsPremium), boolRank(b.IsPremium))
	case "firstName":
		return cmp.Compare(a.FirstName, b.FirstName)
	default:
		return cmp.Compare(a.TelegramUserName, b.TelegramUserName)
	}
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
