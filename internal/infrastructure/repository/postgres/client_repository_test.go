package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riskibarqy/tonttery/internal/domain/client"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
)

func clientRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "telegram_id", "first_name", "last_name", "telegram_user_name",
		"is_bot", "is_premium", "image", "authenticated_at", "created_at", "updated_at",
	})
}

func TestClientRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db, nil)
	now := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tonttery.client c WHERE c.id = $1 LIMIT 1")).
		WithArgs("c1").
		WillReturnRows(clientRows().AddRow("c1", int64(100000001), "Alice", nil, "alice_ton", false, true, nil, nil, now, now))

	got, found, err := repo.GetByID(context.Background(), "c1")
	if err != nil || !found {
		t.Fatalf("get by id: found=%v err=%v", found, err)
	}
	if got.Name() != "Alice" || got.TelegramUserName != "alice_ton" || !got.IsPremium {
		t.Fatalf("unexpected client: %+v", got)
	}
	if !got.AuthenticatedAt.IsZero() {
		t.Fatalf("null authenticated_at must map to zero time")
	}
}

func TestClientRepository_GetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tonttery.client c WHERE c.id = $1")).
		WithArgs("ghost").
		WillReturnRows(clientRows())

	if _, found, err := repo.GetByID(context.Background(), "ghost"); err != nil || found {
		t.Fatalf("expected missing client, found=%v err=%v", found, err)
	}
}

func TestClientRepository_ListByLotteryUsesMemberSort(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db, nil)
	now := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tonttery.client c JOIN tonttery.client_lottery cl ON cl.client_id = c.id WHERE cl.lottery_id = $1")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY c.is_premium DESC, c.telegram_user_name DESC, c.id ASC LIMIT 20")).
		WithArgs("l1").
		WillReturnRows(clientRows().AddRow("c2", int64(100000002), "Bob", "Stone", "bob", false, false, nil, now, now, now))

	page, err := repo.ListByLottery(context.Background(), "l1", pagination.Request{})
	if err != nil {
		t.Fatalf("list by lottery: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Name() != "Bob Stone" || page.Size != pagination.DefaultSize {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestClientRepository_UpsertRejectsInvalidClient(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewClientRepository(db, nil)

	if err := repo.Upsert(context.Background(), client.Client{ID: "c1"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestClientRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tonttery.client (id, telegram_id, first_name")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), client.Client{ID: "c1", TelegramID: 7, FirstName: "Carol"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}
