package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/tonttery/internal/platform/pagination"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
)

const (
	lotteryTable       = "tonttery.lottery"
	clientTable        = "tonttery.client"
	clientLotteryTable = "tonttery.client_lottery"
	jobRunTable        = "tonttery.job_runs"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Guard bounds every store call with a timeout and runs it behind a shared
// circuit breaker. Only errors that point at an unhealthy store count as
// breaker failures.
type Guard struct {
	timeout time.Duration
	breaker *resilience.CircuitBreaker
}

func NewGuard(timeout time.Duration, breaker *resilience.CircuitBreaker) *Guard {
	return &Guard{timeout: timeout, breaker: breaker}
}

func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if g == nil {
		return fn(ctx)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	return g.breaker.Execute(func() error {
		err := fn(callCtx)
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}, isStoreFailure)
}

func isStoreFailure(err error) bool {
	return !isNotFound(err) && !isUniqueViolation(err) && !errors.Is(err, context.Canceled)
}

// orderClauses maps API sort fields onto columns. Unknown fields are dropped;
// they are rejected at the HTTP boundary.
func orderClauses(orders []pagination.Order, columns map[string]string, tieBreaker string) []string {
	out := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		column, ok := columns[o.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if o.Direction == pagination.Desc {
			direction = "DESC"
		}
		out = append(out, column+" "+direction)
	}
	if tieBreaker != "" {
		out = append(out, tieBreaker)
	}
	return out
}

func nullableString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
