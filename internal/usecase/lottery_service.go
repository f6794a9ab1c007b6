package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/domain/prize"
	"github.com/riskibarqy/tonttery/internal/platform/id"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	"github.com/shopspring/decimal"
)

// maxAwardDraws bounds how often Award re-draws when the drawn client leaves
// between selection and completion.
const maxAwardDraws = 3

// LotteryAPI is the lifecycle surface shared by the HTTP layer and the scheduler.
type LotteryAPI interface {
	Create(ctx context.Context, t lottery.Type, on time.Time) (LotteryResult, error)
	Join(ctx context.Context, lotteryID, clientID string) (LotteryResult, error)
	Cancel(ctx context.Context, lotteryID, clientID string) (LotteryResult, error)
	Award(ctx context.Context, t lottery.Type, startDate time.Time) (LotteryResult, error)
	Overview(ctx context.Context, since time.Time) (Overview, error)

	GetClient(ctx context.Context, clientID string) (ClientResult, error)
	GetLottery(ctx context.Context, lotteryID, requesterID string) (LotteryResult, error)
	ListClientLotteries(ctx context.Context, clientID string, page pagination.Request) (pagination.Page[LotteryShort], error)
	ListLotteries(ctx context.Context, page pagination.Request) (pagination.Page[LotteryShort], error)
	ListLotteryMembers(ctx context.Context, lotteryID string, page pagination.Request) (pagination.Page[ClientShort], error)
}

// WinnerSelector picks one id out of a non-empty pool.
type WinnerSelector interface {
	Select(ids []string) (string, error)
}

type LotteryServiceConfig struct {
	EntryFee decimal.Decimal
}

// LotteryService owns the lottery state machine. CREATED lotteries accept joins
// and cancels; Award is the only transition to COMPLETED.
type LotteryService struct {
	lotteryRepo lottery.Repository
	clientRepo  client.Repository
	selector    WinnerSelector
	calc        prize.Calculator
	ids         id.Generator
	payments    PaymentBridge
	cfg         LotteryServiceConfig
	logger      *logging.Logger
	now         func() time.Time
}

func NewLotteryService(
	lotteryRepo lottery.Repository,
	clientRepo client.Repository,
	selector WinnerSelector,
	calc prize.Calculator,
	ids id.Generator,
	payments PaymentBridge,
	cfg LotteryServiceConfig,
	logger *logging.Logger,
) *LotteryService {
	if selector == nil {
		selector = lottery.NewSelector(nil)
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if payments == nil {
		payments = NewLoggingPaymentBridge(logger)
	}
	if cfg.EntryFee.IsZero() {
		cfg.EntryFee = decimal.NewFromInt(100)
	}

	return &LotteryService{
		lotteryRepo: lotteryRepo,
		clientRepo:  clientRepo,
		selector:    selector,
		calc:        calc,
		ids:         ids,
		payments:    payments,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Create opens the next lottery of t after on. A CREATED lottery already
// scheduled for that start date is returned as is.
func (s *LotteryService) Create(ctx context.Context, t lottery.Type, on time.Time) (LotteryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.Create")
	defer span.End()

	if _, err := lottery.ParseType(string(t)); err != nil {
		return LotteryResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	startDate := lottery.NextOccurrence(t, on)
	existing, exists, err := s.lotteryRepo.GetByTypeStatusStartDate(ctx, t, lottery.StatusCreated, startDate)
	if err != nil {
		return LotteryResult{}, storeError("find scheduled lottery", err)
	}
	if exists {
		s.logger.InfoContext(ctx, "lottery already scheduled", "lottery_id", existing.ID, "type", t, "start_date", startDate.Format(lottery.DateLayout))
		return s.buildResult(existing, client.Client{}, ""), nil
	}

	lotteryID, err := s.ids.NewID()
	if err != nil {
		return LotteryResult{}, fmt.Errorf("generate lottery id: %w", err)
	}

	now := s.now().UTC()
	item := lottery.Lottery{
		ID:        lotteryID,
		Type:      t,
		Status:    lottery.StatusCreated,
		StartDate: startDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return LotteryResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.lotteryRepo.Create(ctx, item); err != nil {
		if !errors.Is(err, lottery.ErrAlreadyScheduled) {
			return LotteryResult{}, storeError("create lottery", err)
		}
		// Another instance opened the same period first.
		existing, exists, findErr := s.lotteryRepo.GetByTypeStatusStartDate(ctx, t, lottery.StatusCreated, startDate)
		if findErr != nil {
			return LotteryResult{}, storeError("find concurrently scheduled lottery", findErr)
		}
		if !exists {
			return LotteryResult{}, storeError("create lottery", err)
		}
		s.logger.InfoContext(ctx, "lottery scheduled concurrently", "lottery_id", existing.ID, "type", t, "start_date", startDate.Format(lottery.DateLayout))
		return s.buildResult(existing, client.Client{}, ""), nil
	}

	s.logger.InfoContext(ctx, "lottery created", "lottery_id", item.ID, "type", t, "start_date", startDate.Format(lottery.DateLayout))
	return s.buildResult(item, client.Client{}, ""), nil
}

// Join adds clientID to a CREATED lottery. Joining twice writes nothing.
func (s *LotteryService) Join(ctx context.Context, lotteryID, clientID string) (LotteryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.Join")
	defer span.End()

	lotteryID, clientID, err := requireMembershipIDs(lotteryID, clientID)
	if err != nil {
		return LotteryResult{}, err
	}
	if _, err := s.requireClient(ctx, clientID); err != nil {
		return LotteryResult{}, err
	}
	item, err := s.requireOpenLottery(ctx, lotteryID)
	if err != nil {
		return LotteryResult{}, err
	}
	if item.HasParticipant(clientID) {
		return s.buildResult(item, client.Client{}, clientID), nil
	}

	added, err := s.lotteryRepo.AddParticipant(ctx, lotteryID, clientID)
	if err != nil {
		return LotteryResult{}, storeError("add participant", err)
	}
	if added {
		s.payments.Receive(ctx, s.cfg.EntryFee, clientID)
		s.logger.InfoContext(ctx, "client joined lottery", "lottery_id", lotteryID, "client_id", clientID)
	}

	return s.reloadMembership(ctx, lotteryID, clientID, added)
}

// Cancel removes clientID from a CREATED lottery and refunds the entry fee.
func (s *LotteryService) Cancel(ctx context.Context, lotteryID, clientID string) (LotteryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.Cancel")
	defer span.End()

	lotteryID, clientID, err := requireMembershipIDs(lotteryID, clientID)
	if err != nil {
		return LotteryResult{}, err
	}
	if _, err := s.requireClient(ctx, clientID); err != nil {
		return LotteryResult{}, err
	}
	item, err := s.requireOpenLottery(ctx, lotteryID)
	if err != nil {
		return LotteryResult{}, err
	}
	if !item.HasParticipant(clientID) {
		return s.buildResult(item, client.Client{}, clientID), nil
	}

	removed, err := s.lotteryRepo.RemoveParticipant(ctx, lotteryID, clientID)
	if err != nil {
		return LotteryResult{}, storeError("remove participant", err)
	}
	if removed {
		s.payments.Send(ctx, s.cfg.EntryFee, clientID)
		s.logger.InfoContext(ctx, "client left lottery", "lottery_id", lotteryID, "client_id", clientID)
	}

	return s.reloadMembership(ctx, lotteryID, clientID, removed)
}

// Award draws the winner of the CREATED lottery of t starting on startDate and
// completes it. An empty lottery completes without a winner and with no prize.
// A drawn client that cancels before completion is never awarded.
func (s *LotteryService) Award(ctx context.Context, t lottery.Type, startDate time.Time) (LotteryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.Award")
	defer span.End()

	if _, err := lottery.ParseType(string(t)); err != nil {
		return LotteryResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	startDate = lottery.Date(startDate)

	item, exists, err := s.lotteryRepo.GetByTypeStatusStartDate(ctx, t, lottery.StatusCreated, startDate)
	if err != nil {
		return LotteryResult{}, storeError("find lottery to award", err)
	}
	if !exists {
		return LotteryResult{}, fmt.Errorf("%w: lottery type=%s start_date=%s", ErrNotFound, t, startDate.Format(lottery.DateLayout))
	}
	if item.WinnerID != "" {
		return LotteryResult{}, fmt.Errorf("%w: lottery=%s", ErrAlreadyAwarded, item.ID)
	}

	lotteryID := item.ID
	var (
		winner    client.Client
		completed bool
	)
	for draw := 1; ; draw++ {
		winner, completed, err = s.drawAndComplete(ctx, item)
		if err != nil {
			return LotteryResult{}, err
		}
		if completed || draw == maxAwardDraws {
			break
		}

		// The drawn client left before completion; draw again from the current pool.
		item, exists, err = s.lotteryRepo.GetByIDAndStatus(ctx, lotteryID, lottery.StatusCreated)
		if err != nil {
			return LotteryResult{}, storeError("reload lottery to award", err)
		}
		if !exists {
			break
		}
		s.logger.WarnContext(ctx, "drawn winner left the lottery, drawing again", "lottery_id", lotteryID, "draw", draw)
	}
	if !completed {
		return LotteryResult{}, fmt.Errorf("%w: lottery=%s is no longer open", ErrNotFound, lotteryID)
	}

	final, exists, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return LotteryResult{}, storeError("reload awarded lottery", err)
	}
	if !exists {
		return LotteryResult{}, fmt.Errorf("%w: lottery=%s", ErrNotFound, lotteryID)
	}

	result := s.buildResult(final, winner, "")
	if winner.ID == "" {
		result.Prize = decimal.Zero
		s.logger.InfoContext(ctx, "lottery completed without players", "lottery_id", final.ID, "type", t)
		return result, nil
	}

	s.payments.Send(ctx, result.Prize, winner.ID)
	s.logger.InfoContext(ctx, "lottery awarded",
		"lottery_id", final.ID,
		"type", t,
		"winner_id", winner.ID,
		"players", result.Players,
		"prize", result.Prize.String(),
	)
	return result, nil
}

// drawAndComplete selects a winner from item's participants and completes the
// lottery. It reports false when the lottery closed or the winner left meanwhile.
func (s *LotteryService) drawAndComplete(ctx context.Context, item lottery.Lottery) (client.Client, bool, error) {
	var winner client.Client
	if item.PlayerCount() > 0 {
		winnerID, err := s.selector.Select(item.Participants)
		if err != nil {
			return client.Client{}, false, fmt.Errorf("select winner lottery=%s: %w", item.ID, err)
		}
		winner, err = s.requireClient(ctx, winnerID)
		if err != nil {
			return client.Client{}, false, err
		}
	}

	completed, err := s.lotteryRepo.Complete(ctx, item.ID, winner.ID)
	if err != nil {
		return client.Client{}, false, storeError("complete lottery", err)
	}
	return winner, completed, nil
}

// Overview projects the prize of every lottery starting on or after since.
func (s *LotteryService) Overview(ctx context.Context, since time.Time) (Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.Overview")
	defer span.End()

	since = lottery.Date(since)
	items, err := s.lotteryRepo.ListStartingFrom(ctx, since)
	if err != nil {
		return Overview{}, storeError("list upcoming lotteries", err)
	}

	out := Overview{
		Since:     since,
		Lotteries: make([]LotteryResult, 0, len(items)),
		PrizePool: decimal.Zero,
	}
	for _, item := range items {
		winner, err := s.resolveWinner(ctx, item)
		if err != nil {
			return Overview{}, err
		}
		result := s.buildResult(item, winner, "")
		out.Lotteries = append(out.Lotteries, result)
		out.PrizePool = out.PrizePool.Add(result.Prize)
	}

	return out, nil
}

func (s *LotteryService) GetClient(ctx context.Context, clientID string) (ClientResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.GetClient")
	defer span.End()

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return ClientResult{}, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	item, err := s.requireClient(ctx, clientID)
	if err != nil {
		return ClientResult{}, err
	}

	return clientResultFrom(item), nil
}

// GetLottery resolves a lottery as seen by requesterID, which may be empty.
func (s *LotteryService) GetLottery(ctx context.Context, lotteryID, requesterID string) (LotteryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.GetLottery")
	defer span.End()

	lotteryID = strings.TrimSpace(lotteryID)
	if lotteryID == "" {
		return LotteryResult{}, fmt.Errorf("%w: lottery id is required", ErrInvalidInput)
	}

	item, exists, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return LotteryResult{}, storeError("get lottery", err)
	}
	if !exists {
		return LotteryResult{}, fmt.Errorf("%w: lottery=%s", ErrNotFound, lotteryID)
	}
	winner, err := s.resolveWinner(ctx, item)
	if err != nil {
		return LotteryResult{}, err
	}

	return s.buildResult(item, winner, strings.TrimSpace(requesterID)), nil
}

func (s *LotteryService) ListClientLotteries(ctx context.Context, clientID string, page pagination.Request) (pagination.Page[LotteryShort], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.ListClientLotteries")
	defer span.End()

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return pagination.Page[LotteryShort]{}, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	if _, err := s.requireClient(ctx, clientID); err != nil {
		return pagination.Page[LotteryShort]{}, err
	}

	page = page.WithDefaults(lottery.DefaultClientListSort...)
	items, err := s.lotteryRepo.ListByClient(ctx, clientID, page)
	if err != nil {
		return pagination.Page[LotteryShort]{}, storeError("list client lotteries", err)
	}

	return pagination.Map(items, lotteryShortFrom), nil
}

func (s *LotteryService) ListLotteries(ctx context.Context, page pagination.Request) (pagination.Page[LotteryShort], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.ListLotteries")
	defer span.End()

	page = page.WithDefaults(lottery.DefaultListSort...)
	items, err := s.lotteryRepo.List(ctx, page)
	if err != nil {
		return pagination.Page[LotteryShort]{}, storeError("list lotteries", err)
	}

	return pagination.Map(items, lotteryShortFrom), nil
}

func (s *LotteryService) ListLotteryMembers(ctx context.Context, lotteryID string, page pagination.Request) (pagination.Page[ClientShort], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotteryService.ListLotteryMembers")
	defer span.End()

	lotteryID = strings.TrimSpace(lotteryID)
	if lotteryID == "" {
		return pagination.Page[ClientShort]{}, fmt.Errorf("%w: lottery id is required", ErrInvalidInput)
	}

	page = page.WithDefaults(client.DefaultMemberSort...)
	items, err := s.clientRepo.ListByLottery(ctx, lotteryID, page)
	if err != nil {
		return pagination.Page[ClientShort]{}, storeError("list lottery members", err)
	}

	return pagination.Map(items, clientShortFrom), nil
}

func (s *LotteryService) requireClient(ctx context.Context, clientID string) (client.Client, error) {
	item, exists, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return client.Client{}, storeError("get client", err)
	}
	if !exists {
		return client.Client{}, fmt.Errorf("%w: client=%s", ErrNotFound, clientID)
	}
	return item, nil
}

// requireOpenLottery does not tell a missing lottery apart from a completed one.
func (s *LotteryService) requireOpenLottery(ctx context.Context, lotteryID string) (lottery.Lottery, error) {
	item, exists, err := s.lotteryRepo.GetByIDAndStatus(ctx, lotteryID, lottery.StatusCreated)
	if err != nil {
		return lottery.Lottery{}, storeError("get open lottery", err)
	}
	if !exists {
		return lottery.Lottery{}, fmt.Errorf("%w: open lottery=%s", ErrNotFound, lotteryID)
	}
	return item, nil
}

// reloadMembership reads the lottery back after a membership write. When the
// write was skipped the lottery must still be open, or it was completed in
// between.
func (s *LotteryService) reloadMembership(ctx context.Context, lotteryID, clientID string, written bool) (LotteryResult, error) {
	item, exists, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return LotteryResult{}, storeError("reload lottery", err)
	}
	if !exists || (!written && item.Status != lottery.StatusCreated) {
		return LotteryResult{}, fmt.Errorf("%w: open lottery=%s", ErrNotFound, lotteryID)
	}
	winner, err := s.resolveWinner(ctx, item)
	if err != nil {
		return LotteryResult{}, err
	}
	return s.buildResult(item, winner, clientID), nil
}

func (s *LotteryService) resolveWinner(ctx context.Context, item lottery.Lottery) (client.Client, error) {
	if item.WinnerID == "" {
		return client.Client{}, nil
	}
	winner, exists, err := s.clientRepo.GetByID(ctx, item.WinnerID)
	if err != nil {
		return client.Client{}, storeError("get winner", err)
	}
	if !exists {
		s.logger.WarnContext(ctx, "lottery winner not found", "lottery_id", item.ID, "client_id", item.WinnerID)
		return client.Client{ID: item.WinnerID}, nil
	}
	return winner, nil
}

func (s *LotteryService) buildResult(item lottery.Lottery, winner client.Client, requesterID string) LotteryResult {
	result := LotteryResult{
		ID:        item.ID,
		WinnerID:  item.WinnerID,
		Type:      item.Type,
		Status:    item.Status,
		StartDate: item.StartDate,
		Players:   item.PlayerCount(),
		Prize:     s.calc.Prize(item.PlayerCount()),
		Joined:    requesterID != "" && item.HasParticipant(requesterID),
	}
	if winner.ID != "" {
		result.WinnerID = winner.ID
		result.WinnerTelegramUserName = winner.TelegramUserName
		result.WinnerTelegramID = winner.TelegramID
	}
	return result
}

func requireMembershipIDs(lotteryID, clientID string) (string, string, error) {
	lotteryID = strings.TrimSpace(lotteryID)
	clientID = strings.TrimSpace(clientID)
	var errs []error
	if lotteryID == "" {
		errs = append(errs, errors.New("lottery id is required"))
	}
	if clientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if len(errs) > 0 {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return lotteryID, clientID, nil
}
