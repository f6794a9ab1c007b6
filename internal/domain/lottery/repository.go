package lottery

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

// Repository describes lottery persistence needs from use cases.
//
// Membership writes only apply while the lottery is CREATED and report whether
// the set changed. Complete is a guarded transition: it returns false when the
// lottery was no longer CREATED or a non-empty winnerID was no longer a member.
// Create wraps ErrAlreadyScheduled when an open lottery of the same type and
// start date exists.
type Repository interface {
	Create(ctx context.Context, l Lottery) error
	GetByID(ctx context.Context, lotteryID string) (Lottery, bool, error)
	GetByIDAndStatus(ctx context.Context, lotteryID string, status Status) (Lottery, bool, error)
	GetByTypeStatusStartDate(ctx context.Context, t Type, status Status, startDate time.Time) (Lottery, bool, error)
	List(ctx context.Context, page pagination.Request) (pagination.Page[Lottery], error)
	ListByClient(ctx context.Context, clientID string, page pagination.Request) (pagination.Page[Lottery], error)
	ListStartingFrom(ctx context.Context, since time.Time) ([]Lottery, error)
	AddParticipant(ctx context.Context, lotteryID, clientID string) (bool, error)
	RemoveParticipant(ctx context.Context, lotteryID, clientID string) (bool, error)
	Complete(ctx context.Context, lotteryID, winnerID string) (bool, error)
}

var ErrAlreadyScheduled = errors.New("open lottery already scheduled")

// Sort fields accepted by the listing queries.
var (
	ListSortFields = map[string]struct{}{
		"startDate": {},
		"type":      {},
		"status":    {},
		"createdAt": {},
	}

	DefaultListSort = []pagination.Order{
		{Field: "startDate", Direction: pagination.Desc},
		{Field: "type", Direction: pagination.Desc},
		{Field: "status", Direction: pagination.Desc},
	}

	DefaultClientListSort = []pagination.Order{
		{Field: "startDate", Direction: pagination.Desc},
	}
)
