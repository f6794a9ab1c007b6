package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not found")
	}
	if !isNotFound(errors.Join(errors.New("select"), sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(errors.New("pq: relation lottery does not exist")) {
		t.Fatalf("unexpected not found for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
}

func TestGuard_TimeoutSurfacesAsDeadlineExceeded(t *testing.T) {
	guard := NewGuard(20*time.Millisecond, nil)

	err := guard.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return errors.New("pq: canceling statement due to user request")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGuard_BreakerOpensOnFailuresOnly(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(2, time.Minute, 1)
	guard := NewGuard(time.Second, breaker)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = guard.Do(ctx, func(context.Context) error { return sql.ErrNoRows })
	}
	if breaker.State() != resilience.CircuitStateClosed {
		t.Fatalf("missing rows must not open the breaker, state=%s", breaker.State())
	}

	duplicate := fmt.Errorf("insert lottery: %w", &pq.Error{Code: "23505"})
	for i := 0; i < 3; i++ {
		_ = guard.Do(ctx, func(context.Context) error { return duplicate })
	}
	if breaker.State() != resilience.CircuitStateClosed {
		t.Fatalf("unique violations must not open the breaker, state=%s", breaker.State())
	}

	boom := errors.New("connection refused")
	for i := 0; i < 2; i++ {
		if err := guard.Do(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("expected store error, got %v", err)
		}
	}

	called := false
	err := guard.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, resilience.ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to short-circuit, err=%v called=%v", err, called)
	}
}

func TestGuard_NilRunsDirectly(t *testing.T) {
	var guard *Guard
	if err := guard.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("nil guard: %v", err)
	}
}

func TestOrderClauses(t *testing.T) {
	got := orderClauses([]pagination.Order{
		{Field: "startDate", Direction: pagination.Desc},
		{Field: "unknown", Direction: pagination.Asc},
		{Field: "type", Direction: pagination.Asc},
	}, lotterySortColumns, "l.id ASC")

	want := []string{"l.start_date DESC", "l.type ASC", "l.id ASC"}
	if len(got) != len(want) {
		t.Fatalf("unexpected clauses: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clause %d: got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestNullableString(t *testing.T) {
	if nullableString("  ") != nil {
		t.Fatalf("blank string must become NULL")
	}
	if got := nullableString(" c1 "); got == nil || *got != "c1" {
		t.Fatalf("unexpected value: %v", got)
	}
}
