package usecase

import (
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/shopspring/decimal"
)

// LotteryResult is the resolved view of a single lottery. Joined is relative to
// the requesting client.
type LotteryResult struct {
	ID                     string
	WinnerID               string
	WinnerTelegramUserName string
	WinnerTelegramID       int64
	Type                   lottery.Type
	Status                 lottery.Status
	StartDate              time.Time
	Players                int
	Prize                  decimal.Decimal
	Joined                 bool
}

type LotteryShort struct {
	ID        string
	Type      lottery.Type
	Status    lottery.Status
	StartDate time.Time
}

type ClientResult struct {
	ID               string
	Name             string
	TelegramID       int64
	TelegramUserName string
	Image            string
	AuthenticatedAt  time.Time
	UpdatedAt        time.Time
}

type ClientShort struct {
	ID               string
	Name             string
	TelegramUserName string
	IsPremium        bool
}

// Overview lists upcoming lotteries with their projected prizes.
type Overview struct {
	Since     time.Time
	Lotteries []LotteryResult
	PrizePool decimal.Decimal
}

func lotteryShortFrom(l lottery.Lottery) LotteryShort {
	return LotteryShort{
		ID:        l.ID,
		Type:      l.Type,
		Status:    l.Status,
		StartDate: l.StartDate,
	}
}

func clientResultFrom(c client.Client) ClientResult {
	return ClientResult{
		ID:               c.ID,
		Name:             c.Name(),
		TelegramID:       c.TelegramID,
		TelegramUserName: c.TelegramUserName,
		Image:            c.Image,
		AuthenticatedAt:  c.AuthenticatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func clientShortFrom(c client.Client) ClientShort {
	return ClientShort{
		ID:               c.ID,
		Name:             c.Name(),
		TelegramUserName: c.TelegramUserName,
		IsPremium:        c.IsPremium,
	}
}
