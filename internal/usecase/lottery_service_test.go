package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/domain/lottery"
	"github.com/riskibarqy/tonttery/internal/domain/prize"
	"github.com/riskibarqy/tonttery/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	"github.com/shopspring/decimal"
)

type selectorFunc func(ids []string) (string, error)

func (f selectorFunc) Select(ids []string) (string, error) {
	return f(ids)
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
	ids  []string
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next >= len(g.ids) {
		return "", errors.New("no ids left")
	}
	v := g.ids[g.next]
	g.next++
	return v, nil
}

type recordedTransfer struct {
	direction string
	amount    decimal.Decimal
	clientID  string
}

type recordingPayments struct {
	mu        sync.Mutex
	transfers []recordedTransfer
}

func (p *recordingPayments) Send(_ context.Context, amount decimal.Decimal, to string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers = append(p.transfers, recordedTransfer{direction: "send", amount: amount, clientID: to})
	return true
}

func (p *recordingPayments) Receive(_ context.Context, amount decimal.Decimal, from string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transfers = append(p.transfers, recordedTransfer{direction: "receive", amount: amount, clientID: from})
	return true
}

type memoryFixture struct {
	service   *LotteryService
	lotteries *memory.LotteryRepository
	clients   []client.Client
	payments  *recordingPayments
}

func newMemoryFixture(t *testing.T, selector WinnerSelector, ids ...string) memoryFixture {
	t.Helper()

	calc, err := prize.NewCalculator(10)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	seed := memory.SeedClients()
	lotteries := memory.NewLotteryRepository(nil)
	clients := memory.NewClientRepository(seed, lotteries)
	payments := &recordingPayments{}

	svc := NewLotteryService(lotteries, clients, selector, calc, &sequenceIDs{ids: ids}, payments, LotteryServiceConfig{}, nil)
	svc.now = func() time.Time { return time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC) }

	return memoryFixture{service: svc, lotteries: lotteries, clients: seed, payments: payments}
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := lottery.ParseDate(raw)
	if err != nil {
		t.Fatalf("parse date %s: %v", raw, err)
	}
	return d
}

func TestLotteryService_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, lottery.NewSelector(nil), "l-daily")
	alice, bob := fx.clients[0].ID, fx.clients[1].ID

	created, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.StartDate.Format(lottery.DateLayout) != "2023-10-03" || created.Status != lottery.StatusCreated {
		t.Fatalf("unexpected created lottery: %+v", created)
	}
	if created.Players != 0 || !created.Prize.IsZero() {
		t.Fatalf("new lottery must be empty: %+v", created)
	}

	if _, err := fx.service.Join(ctx, created.ID, alice); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	joined, err := fx.service.Join(ctx, created.ID, bob)
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if joined.Players != 2 || !joined.Prize.Equal(decimal.NewFromInt(180)) || !joined.Joined {
		t.Fatalf("unexpected joined view: %+v", joined)
	}

	awarded, err := fx.service.Award(ctx, lottery.TypeDaily, mustDate(t, "2023-10-03"))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if awarded.Status != lottery.StatusCompleted {
		t.Fatalf("expected completed, got %s", awarded.Status)
	}
	if awarded.WinnerID != alice && awarded.WinnerID != bob {
		t.Fatalf("winner must be a participant, got %q", awarded.WinnerID)
	}
	if awarded.Players != 2 || !awarded.Prize.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected prize: %+v", awarded)
	}
	if awarded.WinnerTelegramUserName == "" {
		t.Fatalf("expected winner identity to be resolved")
	}

	last := fx.payments.transfers[len(fx.payments.transfers)-1]
	if last.direction != "send" || last.clientID != awarded.WinnerID || !last.amount.Equal(awarded.Prize) {
		t.Fatalf("unexpected prize transfer: %+v", last)
	}

	if _, err := fx.service.Join(ctx, created.ID, fx.clients[2].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("joining a completed lottery must fail with ErrNotFound, got %v", err)
	}
	if _, err := fx.service.Award(ctx, lottery.TypeDaily, mustDate(t, "2023-10-03")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second award must fail with ErrNotFound, got %v", err)
	}
}

func TestLotteryService_CreateIsIdempotentPerPeriod(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, nil, "l-1", "l-2")

	first, err := fx.service.Create(ctx, lottery.TypeWeekly, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := fx.service.Create(ctx, lottery.TypeWeekly, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if first.ID != second.ID || first.StartDate.Format(lottery.DateLayout) != "2023-10-09" {
		t.Fatalf("expected the scheduled lottery back: first=%+v second=%+v", first, second)
	}
}

func TestLotteryService_CancelRemovesParticipantAndRefunds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, nil, "l-1")
	alice := fx.clients[0].ID

	created, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.service.Join(ctx, created.ID, alice); err != nil {
		t.Fatalf("join: %v", err)
	}

	cancelled, err := fx.service.Cancel(ctx, created.ID, alice)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Players != 0 || cancelled.Joined || !cancelled.Prize.IsZero() {
		t.Fatalf("unexpected view after cancel: %+v", cancelled)
	}

	again, err := fx.service.Cancel(ctx, created.ID, alice)
	if err != nil || again.Players != 0 {
		t.Fatalf("repeated cancel: view=%+v err=%v", again, err)
	}

	want := []string{"receive", "send"}
	got := make([]string, 0, len(fx.payments.transfers))
	for _, tr := range fx.payments.transfers {
		got = append(got, tr.direction)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected transfers: got=%v want=%v", got, want)
	}
}

func TestLotteryService_AwardEmptyPoolCompletesWithoutWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, selectorFunc(func([]string) (string, error) {
		t.Fatalf("selector must not run on an empty pool")
		return "", nil
	}), "l-1")

	if _, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02")); err != nil {
		t.Fatalf("create: %v", err)
	}
	awarded, err := fx.service.Award(ctx, lottery.TypeDaily, mustDate(t, "2023-10-03"))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if awarded.Status != lottery.StatusCompleted || awarded.WinnerID != "" || !awarded.Prize.IsZero() {
		t.Fatalf("unexpected empty award: %+v", awarded)
	}
	if len(fx.payments.transfers) != 0 {
		t.Fatalf("no prize must be sent for an empty lottery")
	}
}

func TestLotteryService_ConcurrentAwardCompletesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, nil, "l-1")
	created, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, c := range fx.clients {
		if _, err := fx.service.Join(ctx, created.ID, c.ID); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.Award(ctx, lottery.TypeDaily, mustDate(t, "2023-10-03"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNotFound):
		default:
			t.Fatalf("unexpected award error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one award to succeed, got %d", successes)
	}
}

func TestLotteryService_AwardRedrawsWhenWinnerCancelsMidDraw(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var (
		fx        memoryFixture
		lotteryID string
		draws     int
	)
	fx = newMemoryFixture(t, selectorFunc(func(ids []string) (string, error) {
		draws++
		chosen := ids[0]
		if draws == 1 {
			if _, err := fx.service.Cancel(ctx, lotteryID, chosen); err != nil {
				t.Fatalf("cancel during draw: %v", err)
			}
		}
		return chosen, nil
	}), "l-1")
	alice, bob := fx.clients[0].ID, fx.clients[1].ID

	created, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lotteryID = created.ID
	for _, id := range []string{alice, bob} {
		if _, err := fx.service.Join(ctx, lotteryID, id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}

	awarded, err := fx.service.Award(ctx, lottery.TypeDaily, mustDate(t, "2023-10-03"))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if draws != 2 {
		t.Fatalf("expected a second draw, got %d draws", draws)
	}
	if awarded.WinnerID != bob || awarded.Players != 1 || !awarded.Prize.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("winner must come from the remaining pool: %+v", awarded)
	}
	if got := fx.lotteries.Participants(lotteryID); !slices.Equal(got, []string{bob}) {
		t.Fatalf("unexpected participants: %v", got)
	}

	var aliceSends []decimal.Decimal
	for _, tr := range fx.payments.transfers {
		if tr.direction == "send" && tr.clientID == alice {
			aliceSends = append(aliceSends, tr.amount)
		}
	}
	if len(aliceSends) != 1 || !aliceSends[0].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("cancelled client must get the refund only, got %v", aliceSends)
	}
}

type racingCreateRepository struct {
	*memory.LotteryRepository
	rival lottery.Lottery
	once  sync.Once
}

func (r *racingCreateRepository) Create(ctx context.Context, l lottery.Lottery) error {
	r.once.Do(func() {
		_ = r.LotteryRepository.Create(ctx, r.rival)
	})
	return r.LotteryRepository.Create(ctx, l)
}

func TestLotteryService_CreateReturnsConcurrentlyScheduledLottery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	calc, err := prize.NewCalculator(10)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	start := mustDate(t, "2023-10-03")
	lotteries := &racingCreateRepository{
		LotteryRepository: memory.NewLotteryRepository(nil),
		rival:             lottery.Lottery{ID: "l-rival", Type: lottery.TypeDaily, Status: lottery.StatusCreated, StartDate: start},
	}
	clients := memory.NewClientRepository(memory.SeedClients(), lotteries.LotteryRepository)
	svc := NewLotteryService(lotteries, clients, nil, calc, &sequenceIDs{ids: []string{"l-mine"}}, &recordingPayments{}, LotteryServiceConfig{}, nil)

	got, err := svc.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID != "l-rival" || !got.StartDate.Equal(start) {
		t.Fatalf("expected the rival lottery back, got %+v", got)
	}
}

func TestLotteryService_OverviewSumsProjectedPrizes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, nil, "l-daily", "l-weekly")
	today := mustDate(t, "2023-10-02")

	daily, err := fx.service.Create(ctx, lottery.TypeDaily, today)
	if err != nil {
		t.Fatalf("create daily: %v", err)
	}
	weekly, err := fx.service.Create(ctx, lottery.TypeWeekly, today)
	if err != nil {
		t.Fatalf("create weekly: %v", err)
	}
	for _, c := range fx.clients {
		if _, err := fx.service.Join(ctx, daily.ID, c.ID); err != nil {
			t.Fatalf("join daily: %v", err)
		}
	}
	if _, err := fx.service.Join(ctx, weekly.ID, fx.clients[0].ID); err != nil {
		t.Fatalf("join weekly: %v", err)
	}

	overview, err := fx.service.Overview(ctx, today)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Lotteries) != 2 {
		t.Fatalf("unexpected lotteries: %+v", overview.Lotteries)
	}
	if want := decimal.NewFromInt(4 * 90); !overview.PrizePool.Equal(want) {
		t.Fatalf("prize pool: got=%s want=%s", overview.PrizePool, want)
	}
}

func TestLotteryService_ReadViews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newMemoryFixture(t, nil, "l-1")
	alice, bob := fx.clients[0], fx.clients[1]

	created, err := fx.service.Create(ctx, lottery.TypeDaily, mustDate(t, "2023-10-02"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.service.Join(ctx, created.ID, alice.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	asAlice, err := fx.service.GetLottery(ctx, created.ID, alice.ID)
	if err != nil || !asAlice.Joined {
		t.Fatalf("alice view: %+v err=%v", asAlice, err)
	}
	asBob, err := fx.service.GetLottery(ctx, created.ID, bob.ID)
	if err != nil || asBob.Joined {
		t.Fatalf("bob view: %+v err=%v", asBob, err)
	}

	profile, err := fx.service.GetClient(ctx, alice.ID)
	if err != nil || profile.Name != "Alice Ton" {
		t.Fatalf("client view: %+v err=%v", profile, err)
	}

	mine, err := fx.service.ListClientLotteries(ctx, alice.ID, pagination.Request{})
	if err != nil || mine.TotalItems != 1 || mine.Items[0].ID != created.ID {
		t.Fatalf("client lotteries: %+v err=%v", mine, err)
	}
	if _, err := fx.service.ListClientLotteries(ctx, "missing", pagination.Request{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown client must be ErrNotFound, got %v", err)
	}

	members, err := fx.service.ListLotteryMembers(ctx, created.ID, pagination.Request{})
	if err != nil || members.TotalItems != 1 || members.Items[0].TelegramUserName != alice.TelegramUserName {
		t.Fatalf("members: %+v err=%v", members, err)
	}

	all, err := fx.service.ListLotteries(ctx, pagination.Request{})
	if err != nil || all.TotalItems != 1 || all.Size != pagination.DefaultSize {
		t.Fatalf("lotteries: %+v err=%v", all, err)
	}

	if _, err := fx.service.GetLottery(ctx, "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown lottery must be ErrNotFound, got %v", err)
	}
	if _, err := fx.service.Join(ctx, "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank ids must be ErrInvalidInput, got %v", err)
	}
}
