package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/tonttery/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyAwarded        = errors.New("lottery already awarded")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
)

// storeError wraps a store failure, marking timeouts and open breakers as
// retryable.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%s: %w: %w", op, ErrDependencyUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
