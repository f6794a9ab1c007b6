package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/shopspring/decimal"
)

type sentMessage struct {
	chatID string
	text   string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return m.err
}

func TestNotificationService_Messages(t *testing.T) {
	t.Parallel()

	start := time.Date(2023, 10, 3, 0, 0, 0, 0, time.UTC)
	messenger := &fakeMessenger{}
	svc := NewNotificationService(messenger, NotificationConfig{ChannelID: "@tonttery"}, nil)
	ctx := context.Background()

	svc.LotteryCreated(ctx, LotteryResult{ID: "l1", Type: lottery.TypeDaily, Status: lottery.StatusCreated, StartDate: start})
	svc.LotteryAwarded(ctx, LotteryResult{
		ID:                     "l1",
		Type:                   lottery.TypeDaily,
		Status:                 lottery.StatusCompleted,
		StartDate:              start,
		WinnerID:               "c1",
		WinnerTelegramUserName: "alice_ton",
		WinnerTelegramID:       100000001,
		Players:                2,
		Prize:                  decimal.NewFromInt(180),
	})
	svc.Overview(ctx, Overview{PrizePool: decimal.RequireFromString("270.5")})

	want := []sentMessage{
		{chatID: "@tonttery", text: "Created a new daily lottery. The winner will be announced 2023-10-03 at midnight."},
		{chatID: "@tonttery", text: "The winner of daily lottery of 2023-10-03 among the 2 players is alice_ton. The prize is 180 TON."},
		{chatID: "100000001", text: "Congratulation alice_ton, You are the winner of daily lottery of 2023-10-03 among the 2 players. Your prize of 180 TON has been sent."},
		{chatID: "@tonttery", text: "The upcoming lotteries are sharing the prize pool of 270.5 TON."},
	}
	if len(messenger.sent) != len(want) {
		t.Fatalf("unexpected message count: got=%d want=%d (%+v)", len(messenger.sent), len(want), messenger.sent)
	}
	for i := range want {
		if messenger.sent[i] != want[i] {
			t.Fatalf("message %d:\nwant: %+v\ngot:  %+v", i, want[i], messenger.sent[i])
		}
	}
}

func TestNotificationService_EmptyAwardSkipsPersonalMessage(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	svc := NewNotificationService(messenger, NotificationConfig{ChannelID: "@tonttery"}, nil)
	svc.LotteryAwarded(context.Background(), LotteryResult{
		ID:        "l1",
		Type:      lottery.TypeWeekly,
		Status:    lottery.StatusCompleted,
		StartDate: time.Date(2023, 10, 9, 0, 0, 0, 0, time.UTC),
	})

	if len(messenger.sent) != 1 || messenger.sent[0].text != "The winner of weekly lottery of 2023-10-09 completed without players." {
		t.Fatalf("unexpected messages: %+v", messenger.sent)
	}
}

func TestNotificationService_DeliveryFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{err: errors.New("telegram down")}
	svc := NewNotificationService(messenger, NotificationConfig{ChannelID: "@tonttery"}, nil)

	svc.Overview(context.Background(), Overview{PrizePool: decimal.Zero})
	if len(messenger.sent) != 1 {
		t.Fatalf("expected one delivery attempt, got %d", len(messenger.sent))
	}
}

func TestNotificationService_LogOnlyWithoutMessenger(t *testing.T) {
	t.Parallel()

	svc := NewNotificationService(nil, NotificationConfig{}, nil)
	svc.LotteryCreated(context.Background(), LotteryResult{Type: lottery.TypeYearly, StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
}
