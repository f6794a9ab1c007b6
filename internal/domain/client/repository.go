package client

import (
	"context"

	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

// Repository describes client persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, clientID string) (Client, bool, error)
	ListByLottery(ctx context.Context, lotteryID string, page pagination.Request) (pagination.Page[Client], error)
	Upsert(ctx context.Context, c Client) error
}

var (
	MemberSortFields = map[string]struct{}{
		"isPremium":        {},
		"telegramUserName": {},
		"firstName":        {},
	}

	DefaultMemberSort = []pagination.Order{
		{Field: "isPremium", Direction: pagination.Desc},
		{Field: "telegramUserName", Direction: pagination.Desc},
	}
)
