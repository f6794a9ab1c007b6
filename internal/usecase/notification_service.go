package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

// Messenger posts a text message to a chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

type NotificationConfig struct {
	ChannelID string
}

// NotificationService announces lifecycle events. Delivery failures are logged
// and never returned, so a committed mutation is never affected by them.
type NotificationService struct {
	messenger Messenger
	cfg       NotificationConfig
	logger    *logging.Logger
}

func NewNotificationService(messenger Messenger, cfg NotificationConfig, logger *logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{
		messenger: messenger,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *NotificationService) LotteryCreated(ctx context.Context, result LotteryResult) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("Created a new ")
	_, _ = buf.WriteString(typeLabel(result.Type))
	_, _ = buf.WriteString(" lottery. The winner will be announced ")
	_, _ = buf.WriteString(result.StartDate.Format(lottery.DateLayout))
	_, _ = buf.WriteString(" at midnight.")

	s.deliver(ctx, s.cfg.ChannelID, buf.String(), "lottery_id", result.ID)
}

// LotteryAwarded announces the result in the channel and congratulates the
// winner personally.
func (s *NotificationService) LotteryAwarded(ctx context.Context, result LotteryResult) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("The winner of ")
	_, _ = buf.WriteString(typeLabel(result.Type))
	_, _ = buf.WriteString(" lottery of ")
	_, _ = buf.WriteString(result.StartDate.Format(lottery.DateLayout))
	if result.WinnerID == "" {
		_, _ = buf.WriteString(" completed without players.")
		s.deliver(ctx, s.cfg.ChannelID, buf.String(), "lottery_id", result.ID)
		return
	}
	_, _ = buf.WriteString(" among the ")
	_, _ = buf.WriteString(strconv.Itoa(result.Players))
	_, _ = buf.WriteString(" players is ")
	_, _ = buf.WriteString(result.WinnerTelegramUserName)
	_, _ = buf.WriteString(". The prize is ")
	_, _ = buf.WriteString(result.Prize.String())
	_, _ = buf.WriteString(" TON.")
	s.deliver(ctx, s.cfg.ChannelID, buf.String(), "lottery_id", result.ID)

	buf.Reset()
	_, _ = buf.WriteString("Congratulation ")
	_, _ = buf.WriteString(result.WinnerTelegramUserName)
	_, _ = buf.WriteString(", You are the winner of ")
	_, _ = buf.WriteString(typeLabel(result.Type))
	_, _ = buf.WriteString(" lottery of ")
	_, _ = buf.WriteString(result.StartDate.Format(lottery.DateLayout))
	_, _ = buf.WriteString(" among the ")
	_, _ = buf.WriteString(strconv.Itoa(result.Players))
	_, _ = buf.WriteString(" players. Your prize of ")
	_, _ = buf.WriteString(result.Prize.String())
	_, _ = buf.WriteString(" TON has been sent.")

	chatID := ""
	if result.WinnerTelegramID > 0 {
		chatID = strconv.FormatInt(result.WinnerTelegramID, 10)
	}
	s.deliver(ctx, chatID, buf.String(), "lottery_id", result.ID, "client_id", result.WinnerID)
}

func (s *NotificationService) Overview(ctx context.Context, overview Overview) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("The upcoming lotteries are sharing the prize pool of ")
	_, _ = buf.WriteString(overview.PrizePool.String())
	_, _ = buf.WriteString(" TON.")

	s.deliver(ctx, s.cfg.ChannelID, buf.String(), "lotteries", len(overview.Lotteries))
}

func (s *NotificationService) deliver(ctx context.Context, chatID, text string, args ...any) {
	s.logger.InfoContext(ctx, text, args...)
	if s.messenger == nil || strings.TrimSpace(chatID) == "" {
		return
	}

	if err := s.messenger.SendMessage(ctx, chatID, text); err != nil {
		fields := append([]any{"chat_id", chatID, "error", err}, args...)
		s.logger.WarnContext(ctx, "deliver notification failed", fields...)
	}
}

func typeLabel(t lottery.Type) string {
	return strings.ToLower(string(t))
}
